package orderform

import (
	"context"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(m *Model, payment domain.PaymentMethod, address, email, phone string) {
	ctx := context.Background()
	m.SetPayment(ctx, payment)
	m.SetAddress(ctx, address)
	m.SetEmail(ctx, email)
	m.SetPhone(ctx, phone)
}

func TestModel_EmptyFormInvalid(t *testing.T) {
	m := New(events.NewBus(nil))

	errs := m.Validate()

	assert.False(t, m.IsValid())
	assert.Equal(t, Errors{
		FieldPayment: ErrMsgPaymentRequired,
		FieldAddress: ErrMsgAddressRequired,
		FieldEmail:   ErrMsgEmailRequired,
		FieldPhone:   ErrMsgPhoneRequired,
	}, errs)
	assert.Equal(t, []string{
		ErrMsgPaymentRequired, ErrMsgAddressRequired, ErrMsgEmailRequired, ErrMsgPhoneRequired,
	}, errs.Messages())
}

func TestModel_ValidRoundTrip(t *testing.T) {
	m := New(events.NewBus(nil))
	fill(m, domain.PaymentCard, "Glavnaya 1", "x@y.com", "+7 999 1234567")

	assert.Empty(t, m.Validate())
	assert.True(t, m.IsValid())
	assert.Equal(t, domain.OrderForm{
		Payment: domain.PaymentCard,
		Address: "Glavnaya 1",
		Email:   "x@y.com",
		Phone:   "+7 999 1234567",
	}, m.Form())
}

func TestModel_FieldRules(t *testing.T) {
	tests := []struct {
		name    string
		strict  bool
		payment domain.PaymentMethod
		address string
		email   string
		phone   string
		want    Errors
	}{
		{
			name:    "blank address",
			strict:  true,
			payment: domain.PaymentCash,
			address: "   ",
			email:   "a@b.io",
			phone:   "89991234567",
			want:    Errors{FieldAddress: ErrMsgAddressRequired},
		},
		{
			name:    "unknown payment",
			strict:  true,
			payment: "crypto",
			address: "street",
			email:   "a@b.io",
			phone:   "89991234567",
			want:    Errors{FieldPayment: ErrMsgPaymentInvalid},
		},
		{
			name:    "malformed email strict",
			strict:  true,
			payment: domain.PaymentCard,
			address: "street",
			email:   "not-an-email",
			phone:   "(999) 123-45-67",
			want:    Errors{FieldEmail: ErrMsgEmailInvalid},
		},
		{
			name:    "short phone strict",
			strict:  true,
			payment: domain.PaymentCard,
			address: "street",
			email:   "a@b.io",
			phone:   "+7 999 12",
			want:    Errors{FieldPhone: ErrMsgPhoneInvalid},
		},
		{
			name:    "letters in phone strict",
			strict:  true,
			payment: domain.PaymentCard,
			address: "street",
			email:   "a@b.io",
			phone:   "call 89991234567",
			want:    Errors{FieldPhone: ErrMsgPhoneInvalid},
		},
		{
			name:    "lenient accepts any non-blank contacts",
			strict:  false,
			payment: domain.PaymentCard,
			address: "street",
			email:   "whatever",
			phone:   "12",
			want:    Errors{},
		},
		{
			name:    "lenient still requires contacts",
			strict:  false,
			payment: domain.PaymentCard,
			address: "street",
			email:   "  ",
			phone:   "",
			want:    Errors{FieldEmail: ErrMsgEmailRequired, FieldPhone: ErrMsgPhoneRequired},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(events.NewBus(nil), WithStrictContacts(tt.strict))
			fill(m, tt.payment, tt.address, tt.email, tt.phone)

			errs := m.Validate()
			assert.Equal(t, tt.want, errs)
			assert.Equal(t, len(tt.want) == 0, m.IsValid())
		})
	}
}

func TestModel_StepErrors(t *testing.T) {
	m := New(events.NewBus(nil))
	m.SetPayment(context.Background(), domain.PaymentCard)
	m.SetAddress(context.Background(), "street")

	assert.Empty(t, m.StepErrors(FieldPayment, FieldAddress))
	assert.Len(t, m.StepErrors(FieldEmail, FieldPhone), 2)
	assert.False(t, m.IsValid())
}

func TestModel_ChangeNotifications(t *testing.T) {
	bus := events.NewBus(nil)
	m := New(bus)

	var names []events.Name
	var last events.FormEvent
	bus.OnAll(func(ctx context.Context, name events.Name, payload any) {
		names = append(names, name)
		last = payload.(events.FormEvent)
	})

	fill(m, domain.PaymentCash, "street", "a@b.io", "89991234567")

	assert.Equal(t, []events.Name{
		events.OrderPaymentChanged,
		events.OrderAddressChanged,
		events.OrderEmailChanged,
		events.OrderPhoneChanged,
	}, names)
	assert.Equal(t, m.Form(), last.Form)
	assert.Empty(t, last.Errors)

	m.Reset(context.Background())

	require.Equal(t, events.OrderFormReset, names[len(names)-1])
	assert.True(t, last.Form.Empty())
	assert.True(t, m.Form().Empty())
	assert.Len(t, last.Errors, 4)
}

func TestModel_ErrorsIsCopy(t *testing.T) {
	m := New(events.NewBus(nil))
	errs := m.Errors()
	delete(errs, FieldPayment)

	assert.Contains(t, m.Errors(), FieldPayment)
}
