package events

// Model notifications.
const (
	ProductsChanged Name = "products:changed"

	CartItemAdded   Name = "cart:item:added"
	CartItemRemoved Name = "cart:item:removed"
	CartCleared     Name = "cart:cleared"

	OrderPaymentChanged Name = "order:payment:changed"
	OrderAddressChanged Name = "order:address:changed"
	OrderEmailChanged   Name = "order:email:changed"
	OrderPhoneChanged   Name = "order:phone:changed"
	OrderFormReset      Name = "order:form:reset"

	OrderSubmitted Name = "order:submitted"
	OrderSuccess   Name = "order:success"
	OrderFailed    Name = "order:failed"

	ModalOpened Name = "modal:opened"
	ModalClosed Name = "modal:closed"
	FormErrors  Name = "form:errors"
)

// Intents fired by views.
const (
	ProductSelected       Name = "product:selected"
	ProductPreview        Name = "product:preview"
	CartOpened            Name = "cart:opened"
	BasketCheckout        Name = "basket:checkout"
	BasketRemove          Name = "basket:remove"
	PaymentMethodSelected Name = "payment:method-selected"
	PaymentNext           Name = "payment:next"
	ContactsSubmit        Name = "contacts:submit"
	ModalClose            Name = "modal:close"
	CatalogReload         Name = "catalog:reload"
)
