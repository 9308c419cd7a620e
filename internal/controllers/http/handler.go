package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/checkout"
	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const receiptsCacheTTL = 10 * time.Second

type Handler struct {
	service *services.StorefrontService
	rdb     *redis.Client
	log     *zap.Logger
}

// NewHandler builds the HTTP surface. rdb may be nil.
func NewHandler(s *services.StorefrontService, rdb *redis.Client, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: s, rdb: rdb, log: log}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", h.Health)

	r.POST("/sessions", h.CreateSession)
	s := r.Group("/sessions/:id")
	{
		s.GET("", h.GetSession)
		s.DELETE("", h.DeleteSession)
		s.POST("/products/:productId/toggle", h.ToggleProduct)
		s.POST("/products/:productId/preview", h.PreviewProduct)
		s.POST("/basket", h.OpenBasket)
		s.DELETE("/basket/:productId", h.RemoveFromBasket)
		s.POST("/checkout", h.Checkout)
		s.POST("/payment/method", h.SelectPaymentMethod)
		s.POST("/payment", h.SubmitPayment)
		s.POST("/contacts", h.SubmitContacts)
		s.POST("/modal/close", h.CloseModal)
		s.POST("/catalog/reload", h.ReloadCatalog)
	}

	r.GET("/receipts/product/:productId", h.GetReceiptsByProduct)
	r.GET("/receipts/:receiptId", h.GetReceipt)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": h.service.SessionCount()})
}

func (h *Handler) CreateSession(c *gin.Context) {
	sess := h.service.CreateSession(c.Request.Context())
	c.JSON(http.StatusCreated, SessionResponse{ID: sess.ID, Snapshot: sess.Orchestrator.Snapshot()})
}

func (h *Handler) GetSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, SessionResponse{ID: sess.ID, Snapshot: sess.Orchestrator.Snapshot()})
}

func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.service.CloseSession(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ToggleProduct(c *gin.Context) {
	h.intent(c, events.ProductSelected, events.ProductIntent{ProductID: c.Param("productId")})
}

func (h *Handler) PreviewProduct(c *gin.Context) {
	h.intent(c, events.ProductPreview, events.ProductIntent{ProductID: c.Param("productId")})
}

func (h *Handler) OpenBasket(c *gin.Context) {
	h.intent(c, events.CartOpened, nil)
}

func (h *Handler) RemoveFromBasket(c *gin.Context) {
	h.intent(c, events.BasketRemove, events.ProductIntent{ProductID: c.Param("productId")})
}

func (h *Handler) Checkout(c *gin.Context) {
	h.intent(c, events.BasketCheckout, nil)
}

func (h *Handler) SelectPaymentMethod(c *gin.Context) {
	var req PaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	h.intent(c, events.PaymentMethodSelected, events.PaymentIntent{Payment: req.Payment})
}

func (h *Handler) SubmitPayment(c *gin.Context) {
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	h.intent(c, events.PaymentNext, events.PaymentIntent{Payment: req.Payment, Address: req.Address})
}

func (h *Handler) SubmitContacts(c *gin.Context) {
	var req ContactsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	sess, ok := h.session(c)
	if !ok || !h.idle(c, sess) {
		return
	}

	sess.Bus.Emit(c.Request.Context(), events.ContactsSubmit, events.ContactsIntent{Email: req.Email, Phone: req.Phone})

	snap := sess.Orchestrator.Snapshot()
	if snap.State == checkout.ContactsStep && snap.SubmitError != "" && len(snap.Errors) == 0 {
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: snap.SubmitError, Snapshot: &snap})
		return
	}
	c.JSON(http.StatusOK, SessionResponse{ID: sess.ID, Snapshot: snap})
}

func (h *Handler) CloseModal(c *gin.Context) {
	h.intent(c, events.ModalClose, nil)
}

func (h *Handler) ReloadCatalog(c *gin.Context) {
	h.intent(c, events.CatalogReload, nil)
}

func (h *Handler) GetReceiptsByProduct(c *gin.Context) {
	productId := c.Param("productId")
	if productId == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "productId required"})
		return
	}
	cacheKey := services.ReceiptsCacheKey(productId)

	ctx := c.Request.Context()
	if h.rdb != nil {
		b, err := h.rdb.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var receipts []domain.Receipt
			if err := json.Unmarshal(b, &receipts); err == nil {
				c.JSON(http.StatusOK, receipts)
				return
			}
			h.log.Warn("receipts cache entry is corrupt", zap.String("key", cacheKey))
		}
	}

	receipts, err := h.service.ReceiptsByProduct(productId)
	if err != nil {
		h.receiptError(c, err)
		return
	}

	if h.rdb != nil {
		h.cacheReceipts(ctx, cacheKey, receipts)
	}
	c.JSON(http.StatusOK, receipts)
}

func (h *Handler) GetReceipt(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("receiptId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid receipt id"})
		return
	}
	rc, err := h.service.ReceiptByID(id)
	if err != nil {
		h.receiptError(c, err)
		return
	}
	c.JSON(http.StatusOK, rc)
}

func (h *Handler) cacheReceipts(ctx context.Context, key string, receipts []domain.Receipt) {
	data, err := json.Marshal(receipts)
	if err != nil {
		return
	}
	if err := h.rdb.Set(ctx, key, data, receiptsCacheTTL).Err(); err != nil {
		h.log.Warn("receipts cache write failed", zap.Error(err))
	}
}

func (h *Handler) receiptError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrReceiptNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrJournalDisabled):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	default:
		h.log.Error("receipt lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}
}

// intent fires one view intent on the session bus and answers with the
// resulting snapshot.
func (h *Handler) intent(c *gin.Context, name events.Name, payload any) {
	sess, ok := h.session(c)
	if !ok || !h.idle(c, sess) {
		return
	}
	sess.Bus.Emit(c.Request.Context(), name, payload)
	c.JSON(http.StatusOK, SessionResponse{ID: sess.ID, Snapshot: sess.Orchestrator.Snapshot()})
}

func (h *Handler) session(c *gin.Context) (*services.Session, bool) {
	sess, err := h.service.Session(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return nil, false
	}
	return sess, true
}

// idle rejects intents while an order submission is in flight.
func (h *Handler) idle(c *gin.Context, sess *services.Session) bool {
	if sess.Orchestrator.State() != checkout.Submitting {
		return true
	}
	c.JSON(http.StatusConflict, ErrorResponse{Error: checkout.ErrSubmissionInProgress.Error()})
	return false
}
