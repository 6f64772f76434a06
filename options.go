package formstate

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-formstate/pkg/activity"
	"github.com/goliatone/go-formstate/pkg/input"
	"github.com/goliatone/go-formstate/pkg/session"
	"github.com/goliatone/go-formstate/pkg/validation"
)

// Option configures a FormState.
type Option func(*options)

// BeforeValidationFunc runs ahead of every validation, e.g. to adjust rules
// that depend on other fields. An error aborts validation.
type BeforeValidationFunc func(ctx context.Context, f *FormState) error

type options struct {
	settings         Config
	session          session.Session
	input            input.Input
	validator        validation.Validator
	rules            validation.RuleSet
	messages         validation.Messages
	catalog          *validation.Catalog
	beforeValidation []BeforeValidationFunc
	sanitizer        Sanitizer
	logger           *slog.Logger
	hooks            activity.Hooks
	emitter          *activity.Emitter
	actor            activity.Actor
	layers           []Layer
}

func applyOptions(opts []Option) options {
	cfg := options{settings: DefaultConfig()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	if cfg.input == nil {
		cfg.input = input.Empty()
	}
	if cfg.sanitizer == nil && cfg.settings.Sanitize {
		cfg.sanitizer = StrictSanitizer()
	}
	if cfg.emitter == nil && len(cfg.hooks) > 0 {
		cfg.emitter = activity.NewEmitter(cfg.hooks, activity.Config{
			Enabled: cfg.settings.ActivityEnabled,
			Channel: cfg.settings.ActivityChannel,
		})
	}
	return cfg
}

// WithConfig applies settings, typically loaded with ConfigFromEnv.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.settings = cfg
	}
}

// WithKeyPrefix overrides the session key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		o.settings.KeyPrefix = prefix
	}
}

// WithEmptyValue sets the value Save stores for fields missing from input.
func WithEmptyValue(value string) Option {
	return func(o *options) {
		o.settings.EmptyValue = value
	}
}

// WithSession sets the session service.
func WithSession(s session.Session) Option {
	return func(o *options) {
		o.session = s
	}
}

// WithInput sets the current request input.
func WithInput(in input.Input) Option {
	return func(o *options) {
		o.input = in
	}
}

// WithValidator replaces the default validation engine.
func WithValidator(v validation.Validator) Option {
	return func(o *options) {
		o.validator = v
	}
}

// WithRules declares the form's rule set.
func WithRules(rules validation.RuleSet) Option {
	return func(o *options) {
		o.rules = rules.Clone()
	}
}

// WithMessages overrides validation messages.
func WithMessages(messages validation.Messages) Option {
	return func(o *options) {
		o.messages = messages.Clone()
	}
}

// WithDefinition applies a definition's rules and messages.
func WithDefinition(def validation.Definition) Option {
	return func(o *options) {
		o.rules = def.Rules.Clone()
		o.messages = def.Messages.Clone()
	}
}

// WithCatalog resolves rules and messages from catalog by form identity
// unless WithRules or WithDefinition already supplied them.
func WithCatalog(catalog *validation.Catalog) Option {
	return func(o *options) {
		o.catalog = catalog
	}
}

// WithBeforeValidation registers fn to run before each validation.
func WithBeforeValidation(fn BeforeValidationFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.beforeValidation = append(o.beforeValidation, fn)
		}
	}
}

// WithSanitizer cleans string values on Save.
func WithSanitizer(s Sanitizer) Option {
	return func(o *options) {
		o.sanitizer = s
	}
}

// WithLogger sets the structured logger. Logging is discarded by default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithActivity registers hooks notified of form lifecycle events.
func WithActivity(hooks ...activity.Hook) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, hooks...)
	}
}

// WithEmitter shares a preconfigured emitter. It takes precedence over
// WithActivity.
func WithEmitter(emitter *activity.Emitter) Option {
	return func(o *options) {
		o.emitter = emitter
	}
}

// WithActor attributes emitted events to actor.
func WithActor(actor activity.Actor) Option {
	return func(o *options) {
		o.actor = actor
	}
}

// WithLayer inserts an extra layer into the Old resolution chain. Its
// priority must differ from the built-in scopes.
func WithLayer(layer Layer) Option {
	return func(o *options) {
		o.layers = append(o.layers, layer)
	}
}
