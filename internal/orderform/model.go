// Package orderform accumulates the checkout form and validates it.
//
// Validation never fails loudly: every rule violation becomes an entry in an
// Errors map keyed by field name, and an empty map means the form can be
// submitted.
package orderform

import (
	"context"
	"regexp"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/events"

	"github.com/go-playground/validator/v10"
)

const (
	FieldPayment = "payment"
	FieldAddress = "address"
	FieldEmail   = "email"
	FieldPhone   = "phone"
)

// Fields lists the form fields in display order.
var Fields = []string{FieldPayment, FieldAddress, FieldEmail, FieldPhone}

const (
	ErrMsgPaymentRequired = "Payment method is not selected"
	ErrMsgPaymentInvalid  = "Unsupported payment method"
	ErrMsgAddressRequired = "Delivery address is required"
	ErrMsgEmailRequired   = "Email is required"
	ErrMsgEmailInvalid    = "Email must look like name@example.com"
	ErrMsgPhoneRequired   = "Phone is required"
	ErrMsgPhoneInvalid    = "Phone must contain at least 10 digits"
)

const minPhoneDigits = 10

var phoneChars = regexp.MustCompile(`^\+?[0-9\s\-()]+$`)

type Errors map[string]string

// Messages returns the error texts in field display order.
func (e Errors) Messages() []string {
	out := make([]string, 0, len(e))
	for _, f := range Fields {
		if msg, ok := e[f]; ok {
			out = append(out, msg)
		}
	}
	return out
}

type Option func(*Model)

// WithStrictContacts toggles the email and phone format checks. Without them
// only presence is required.
func WithStrictContacts(strict bool) Option {
	return func(m *Model) { m.strict = strict }
}

type Model struct {
	bus      *events.Bus
	validate *validator.Validate
	strict   bool
	form     domain.OrderForm
	errors   Errors
}

func New(bus *events.Bus, opts ...Option) *Model {
	m := &Model{
		bus:      bus,
		validate: validator.New(),
		strict:   true,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.errors = m.check()
	return m
}

func (m *Model) SetPayment(ctx context.Context, p domain.PaymentMethod) {
	m.form.Payment = p
	m.changed(ctx, events.OrderPaymentChanged)
}

func (m *Model) SetAddress(ctx context.Context, address string) {
	m.form.Address = address
	m.changed(ctx, events.OrderAddressChanged)
}

func (m *Model) SetEmail(ctx context.Context, email string) {
	m.form.Email = strings.TrimSpace(email)
	m.changed(ctx, events.OrderEmailChanged)
}

func (m *Model) SetPhone(ctx context.Context, phone string) {
	m.form.Phone = strings.TrimSpace(phone)
	m.changed(ctx, events.OrderPhoneChanged)
}

func (m *Model) Reset(ctx context.Context) {
	m.form = domain.OrderForm{}
	m.changed(ctx, events.OrderFormReset)
}

func (m *Model) changed(ctx context.Context, name events.Name) {
	m.errors = m.check()
	m.bus.Emit(ctx, name, events.FormEvent{Form: m.form, Errors: m.Errors()})
}

// Validate recomputes and returns the full error map.
func (m *Model) Validate() Errors {
	m.errors = m.check()
	return m.Errors()
}

// StepErrors returns the errors limited to fields.
func (m *Model) StepErrors(fields ...string) Errors {
	out := Errors{}
	for _, f := range fields {
		if msg, ok := m.errors[f]; ok {
			out[f] = msg
		}
	}
	return out
}

func (m *Model) Errors() Errors {
	out := make(Errors, len(m.errors))
	for k, v := range m.errors {
		out[k] = v
	}
	return out
}

func (m *Model) IsValid() bool {
	return len(m.errors) == 0
}

func (m *Model) Form() domain.OrderForm {
	return m.form
}

func (m *Model) check() Errors {
	errs := Errors{}

	switch {
	case m.form.Payment == "":
		errs[FieldPayment] = ErrMsgPaymentRequired
	case !m.form.Payment.Valid():
		errs[FieldPayment] = ErrMsgPaymentInvalid
	}

	if strings.TrimSpace(m.form.Address) == "" {
		errs[FieldAddress] = ErrMsgAddressRequired
	}

	switch {
	case m.form.Email == "":
		errs[FieldEmail] = ErrMsgEmailRequired
	case m.strict && m.validate.Var(m.form.Email, "email") != nil:
		errs[FieldEmail] = ErrMsgEmailInvalid
	}

	switch {
	case m.form.Phone == "":
		errs[FieldPhone] = ErrMsgPhoneRequired
	case m.strict && !validPhone(m.form.Phone):
		errs[FieldPhone] = ErrMsgPhoneInvalid
	}

	return errs
}

func validPhone(phone string) bool {
	if !phoneChars.MatchString(phone) {
		return false
	}
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= minPhoneDigits
}
