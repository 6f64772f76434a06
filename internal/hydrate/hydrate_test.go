package hydrate

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

type shippingAddress struct {
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	StreetAddress string   `json:"street_address"`
	SuiteNumber   string   `json:"suite_number"`
	Status        string   `json:"status"`
	Tags          []string `json:"tags"`
}

func TestDecoderDecodesFields(t *testing.T) {
	tests := []struct {
		name      string
		payload   map[string]any
		options   []DecoderOption[shippingAddress]
		expect    shippingAddress
		expectErr string
	}{
		{
			name: "plain fields",
			payload: map[string]any{
				"first_name":     "Ada",
				"last_name":      "Lovelace",
				"street_address": "12 St James Square",
				"tags":           []string{"vip"},
			},
			expect: shippingAddress{
				FirstName:     "Ada",
				LastName:      "Lovelace",
				StreetAddress: "12 St James Square",
				Tags:          []string{"vip"},
			},
		},
		{
			name:      "nil payload",
			payload:   nil,
			expectErr: `no fields for form "address"`,
		},
		{
			name:      "unknown fields rejected",
			payload:   map[string]any{"first_name": "Ada", "middle_name": "Augusta"},
			options:   []DecoderOption[shippingAddress]{WithStrict[shippingAddress]()},
			expectErr: `bind form "address"`,
		},
		{
			name:    "pre hook splits full name",
			payload: map[string]any{"full_name": "Ada Lovelace"},
			options: []DecoderOption[shippingAddress]{WithPreHook[shippingAddress](splitNameHook)},
			expect:  shippingAddress{FirstName: "Ada", LastName: "Lovelace"},
		},
		{
			name:      "pre hook failure",
			payload:   map[string]any{"full_name": "Ada"},
			options:   []DecoderOption[shippingAddress]{WithPreHook[shippingAddress](splitNameHook)},
			expectErr: "pre-hook for form",
		},
		{
			name:    "post hook defaults status",
			payload: map[string]any{"first_name": "Ada"},
			options: []DecoderOption[shippingAddress]{WithPostHook[shippingAddress](defaultStatusHook)},
			expect:  shippingAddress{FirstName: "Ada", Status: "draft:address"},
		},
		{
			name:    "custom decoder",
			payload: map[string]any{"snapshot": `{"first_name":"Grace","status":"active"}`},
			options: []DecoderOption[shippingAddress]{WithCustomDecoder[shippingAddress](snapshotDecoder)},
			expect:  shippingAddress{FirstName: "Grace", Status: "active"},
		},
		{
			name:      "custom decoder failure",
			payload:   map[string]any{},
			options:   []DecoderOption[shippingAddress]{WithCustomDecoder[shippingAddress](snapshotDecoder)},
			expectErr: "custom decoder for form",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decoder := NewDecoder[shippingAddress](tc.options...)
			result, err := decoder.Decode(Context{Form: "address", Key: "serialized_field_data[address]"}, tc.payload)

			if tc.expectErr != "" {
				if err == nil {
					t.Fatalf("expected error %q, got nil", tc.expectErr)
				}
				if !strings.Contains(err.Error(), tc.expectErr) {
					t.Fatalf("expected error containing %q, got %v", tc.expectErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}
			if !reflect.DeepEqual(tc.expect, result) {
				t.Fatalf("decoded struct mismatch:\nwant: %#v\n got: %#v", tc.expect, result)
			}
		})
	}
}

func TestDecoderDoesNotMutatePayload(t *testing.T) {
	payload := map[string]any{"full_name": "Ada Lovelace"}
	decoder := NewDecoder[shippingAddress](WithPreHook[shippingAddress](splitNameHook))

	if _, err := decoder.Decode(Context{Form: "address"}, payload); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if _, ok := payload["first_name"]; ok {
		t.Fatalf("expected caller payload untouched, got %v", payload)
	}
}

type checkoutStep struct {
	Quantity   int      `json:"quantity"`
	Price      float64  `json:"price"`
	Gift       bool     `json:"gift"`
	Newsletter bool     `json:"newsletter"`
	Seats      *uint    `json:"seats"`
	Coupon     string   `json:"coupon"`
	Topics     []string `json:"topics"`
	Floors     []int    `json:"floors"`
	Contact    struct {
		Phone   string `json:"phone"`
		Primary bool   `json:"primary"`
	} `json:"contact"`
}

func TestDecoderCoercesSubmittedValues(t *testing.T) {
	var want checkoutStep
	want.Quantity = 3
	want.Price = 9.5
	want.Gift = true
	want.Coupon = "SPRING"
	want.Topics = []string{"go"}
	want.Floors = []int{1, 2}
	want.Contact.Phone = "555"
	want.Contact.Primary = true

	got, err := NewDecoder[checkoutStep]().Decode(Context{Form: "checkout"}, map[string]any{
		"quantity":   "3",
		"price":      " 9.5 ",
		"gift":       "on",
		"newsletter": "",
		"seats":      "",
		"coupon":     []string{"SPRING", "WINTER"},
		"topics":     "go",
		"floors":     []string{"1", "2"},
		"contact":    map[string]any{"phone": 555, "primary": "yes"},
		"unrelated":  "kept",
	})
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("decoded struct mismatch:\nwant: %#v\n got: %#v", want, got)
	}
}

func TestDecoderCoercionErrors(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]any
		expect string
	}{
		{name: "integer", fields: map[string]any{"quantity": "three"}, expect: `field "quantity"`},
		{name: "boolean", fields: map[string]any{"gift": "maybe"}, expect: `"maybe" is not a boolean`},
		{name: "list entry", fields: map[string]any{"floors": []string{"1", "x"}}, expect: `field "floors"`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewDecoder[checkoutStep]().Decode(Context{Form: "checkout"}, tc.fields)
			if !errors.Is(err, ErrCoerce) {
				t.Fatalf("expected ErrCoerce, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.expect) {
				t.Fatalf("expected error containing %q, got %v", tc.expect, err)
			}
		})
	}
}

func TestDecoderWithoutCoercion(t *testing.T) {
	_, err := NewDecoder[checkoutStep](WithoutCoercion[checkoutStep]()).Decode(
		Context{Form: "checkout"}, map[string]any{"quantity": "3"})
	if err == nil || !strings.Contains(err.Error(), `bind form "checkout"`) {
		t.Fatalf("expected raw string to fail binding, got %v", err)
	}
}

func TestDecoderLeavesMapTargetsAlone(t *testing.T) {
	got, err := NewDecoder[map[string]any]().Decode(Context{Form: "order"}, map[string]any{"quantity": "3"})
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if got["quantity"] != "3" {
		t.Fatalf("expected untouched string, got %#v", got["quantity"])
	}
}

func splitNameHook(_ Context, payload map[string]any) (map[string]any, error) {
	value, ok := payload["full_name"].(string)
	if !ok || value == "" {
		return payload, nil
	}
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid full name %q", value)
	}
	delete(payload, "full_name")
	payload["first_name"] = parts[0]
	payload["last_name"] = parts[1]
	return payload, nil
}

func defaultStatusHook(ctx Context, out *shippingAddress) error {
	if out == nil {
		return errors.New("address is nil")
	}
	if out.Status == "" {
		out.Status = "draft:" + ctx.Form
	}
	return nil
}

func snapshotDecoder(ctx Context, payload map[string]any) (shippingAddress, error) {
	var zero shippingAddress
	raw, ok := payload["snapshot"].(string)
	if !ok || raw == "" {
		return zero, fmt.Errorf("missing snapshot for form %q", ctx.Form)
	}
	var out shippingAddress
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return zero, err
	}
	return out, nil
}
