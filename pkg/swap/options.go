package swap

import (
	"fmt"
	"reflect"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/propellerswap/propeller/pkg/memo"
)

// Options tunes the orchestrator. Zero fields take their default.
type Options struct {
	// TargetTimeout bounds the wait for the target chain event after submission.
	TargetTimeout time.Duration `default:"10m" validate:"gt=0"`
	// SourceEventTimeout bounds the wait for the source chain echo of the
	// submitted transfer. Expiry is not fatal.
	SourceEventTimeout time.Duration `default:"5m" validate:"gt=0"`
	// JournalTimeout bounds the terminal journal write.
	JournalTimeout time.Duration `default:"10s" validate:"gt=0"`
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithOptions sets timing options.
func WithOptions(opts Options) Option {
	return func(o *Orchestrator) { o.opts = opts }
}

// WithJournal records every terminal execution to j.
func WithJournal(j Journal) Option {
	return func(o *Orchestrator) { o.journal = j }
}

// WithMemoSource replaces the random memo generator.
func WithMemoSource(fn func() (memo.Memo, error)) Option {
	return func(o *Orchestrator) { o.newMemo = fn }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

func (o Options) withDefaults() (Options, error) {
	if err := defaults.Set(&o); err != nil {
		return Options{}, fmt.Errorf("failed to apply option defaults: %w", err)
	}
	if err := validate.Struct(o); err != nil {
		return Options{}, fmt.Errorf("invalid options: %w", err)
	}
	return o, nil
}

// ValidateRequest checks the request shape without touching any chain.
func ValidateRequest(req Request) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}
