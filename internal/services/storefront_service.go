package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/infra"
	rabbit "storefront/internal/infra/rabbitmq"
	"storefront/internal/orderform"
	"storefront/internal/repository"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrReceiptNotFound = errors.New("receipt not found")
	ErrJournalDisabled = errors.New("receipt journal is not configured")
)

const (
	catalogCacheKey   = "catalog:products"
	orderCreatedTopic = "order.created"
)

// ReceiptsCacheKey is the Redis key holding receipts that contain productID.
func ReceiptsCacheKey(productID string) string {
	return "receipts:product:" + productID
}

type Options struct {
	CDNURL         string
	StrictContacts bool
	CatalogTTL     time.Duration
	Now            func() time.Time
}

// Session is one browser tab: its own bus, models and orchestrator.
type Session struct {
	ID           string
	Bus          *events.Bus
	Orchestrator *checkout.Orchestrator
	CreatedAt    time.Time

	lastSeen atomic.Int64
}

func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) touch(at time.Time) {
	s.lastSeen.Store(at.UnixNano())
}

type StorefrontService struct {
	repo        repository.ReceiptRepository
	store       infra.StoreClientInterface
	publisher   rabbit.PublisherInterface
	redisClient *redis.Client
	log         *zap.Logger
	opts        Options

	catalogFetch singleflight.Group

	mu       sync.RWMutex
	sessions map[string]*Session

	pending sync.WaitGroup
}

// NewStorefrontService wires the session registry. repo and pub may be nil,
// in which case receipts are not journaled or published.
func NewStorefrontService(r repository.ReceiptRepository, s infra.StoreClientInterface, pub rabbit.PublisherInterface, log *zap.Logger, opts Options) *StorefrontService {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CatalogTTL <= 0 {
		opts.CatalogTTL = time.Minute
	}
	return &StorefrontService{
		repo:      r,
		store:     s,
		publisher: pub,
		log:       log,
		opts:      opts,
		sessions:  make(map[string]*Session),
	}
}

func (u *StorefrontService) SetRedisClient(client *redis.Client) {
	u.redisClient = client
}

// CreateSession builds a fresh session and loads its catalog. A catalog
// failure does not fail the session; it shows up in the snapshot instead.
func (u *StorefrontService) CreateSession(ctx context.Context) *Session {
	id := uuid.NewString()
	log := u.log.With(zap.String("session_id", id))

	bus := events.NewBus(log)
	orch := checkout.New(checkout.Deps{
		Bus:       bus,
		Catalog:   catalog.New(bus),
		Cart:      cart.New(bus),
		Form:      orderform.New(bus, orderform.WithStrictContacts(u.opts.StrictContacts)),
		Source:    u,
		Submitter: u.store,
		Logger:    log,
	})
	bus.On(events.OrderSuccess, u.onOrderSuccess)

	now := u.opts.Now()
	sess := &Session{ID: id, Bus: bus, Orchestrator: orch, CreatedAt: now}
	sess.touch(now)

	u.mu.Lock()
	u.sessions[id] = sess
	u.mu.Unlock()

	if err := orch.LoadCatalog(ctx); err != nil {
		log.Warn("session started without catalog", zap.Error(err))
	}
	log.Info("session created")
	return sess
}

func (u *StorefrontService) Session(id string) (*Session, error) {
	u.mu.RLock()
	sess, ok := u.sessions[id]
	u.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.touch(u.opts.Now())
	return sess, nil
}

func (u *StorefrontService) CloseSession(id string) error {
	u.mu.Lock()
	sess, ok := u.sessions[id]
	delete(u.sessions, id)
	u.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	sess.Orchestrator.Close()
	u.log.Info("session closed", zap.String("session_id", id))
	return nil
}

func (u *StorefrontService) SessionCount() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.sessions)
}

// PruneSessions drops sessions idle for longer than ttl. Sessions with an
// order in flight are kept.
func (u *StorefrontService) PruneSessions(ttl time.Duration) int {
	cutoff := u.opts.Now().Add(-ttl)

	u.mu.Lock()
	var stale []*Session
	for id, sess := range u.sessions {
		if sess.LastSeen().After(cutoff) || sess.Orchestrator.State() == checkout.Submitting {
			continue
		}
		delete(u.sessions, id)
		stale = append(stale, sess)
	}
	u.mu.Unlock()

	for _, sess := range stale {
		sess.Orchestrator.Close()
	}
	if len(stale) > 0 {
		u.log.Info("pruned idle sessions", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// RunJanitor prunes idle sessions every interval until ctx is done.
func (u *StorefrontService) RunJanitor(ctx context.Context, interval, ttl time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			u.PruneSessions(ttl)
		}
	}
}

// Products serves the catalog to every session: Redis first, then one shared
// collaborator call for concurrent misses.
func (u *StorefrontService) Products(ctx context.Context) ([]domain.Product, error) {
	if items, ok := u.cachedProducts(ctx); ok {
		return items, nil
	}

	v, err, shared := u.catalogFetch.Do(catalogCacheKey, func() (interface{}, error) {
		return u.fetchProducts(ctx)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		u.log.Debug("catalog fetch shared")
	}

	items := v.([]domain.Product)
	out := make([]domain.Product, len(items))
	copy(out, items)
	return out, nil
}

func (u *StorefrontService) fetchProducts(ctx context.Context) ([]domain.Product, error) {
	list, err := u.store.GetProducts(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]domain.Product, 0, len(list.Items))
	for _, p := range list.Items {
		p.Image = u.imageURL(p.Image)
		items = append(items, p)
	}
	u.cacheProducts(ctx, items)
	return items, nil
}

func (u *StorefrontService) cachedProducts(ctx context.Context) ([]domain.Product, bool) {
	if u.redisClient == nil {
		return nil, false
	}
	cached, err := u.redisClient.Get(ctx, catalogCacheKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			u.log.Warn("catalog cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var items []domain.Product
	if err := json.Unmarshal([]byte(cached), &items); err != nil {
		u.log.Warn("catalog cache entry is corrupt", zap.Error(err))
		return nil, false
	}
	return items, true
}

func (u *StorefrontService) cacheProducts(ctx context.Context, items []domain.Product) {
	if u.redisClient == nil {
		return
	}
	data, err := json.Marshal(items)
	if err != nil {
		u.log.Warn("catalog cache encode failed", zap.Error(err))
		return
	}
	if err := u.redisClient.Set(ctx, catalogCacheKey, data, u.opts.CatalogTTL).Err(); err != nil {
		u.log.Warn("catalog cache write failed", zap.Error(err))
	}
}

// imageURL points a collaborator image path at the CDN, serving the PNG
// rendition of SVG assets.
func (u *StorefrontService) imageURL(image string) string {
	if image == "" || u.opts.CDNURL == "" {
		return image
	}
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return image
	}
	image = strings.Replace(image, ".svg", ".png", 1)
	return strings.TrimSuffix(u.opts.CDNURL, "/") + "/" + strings.TrimPrefix(image, "/")
}

// WarmupCatalogCache loads the catalog into Redis ahead of the first session.
func (u *StorefrontService) WarmupCatalogCache(ctx context.Context) error {
	if u.redisClient == nil {
		return nil
	}
	items, err := u.fetchProducts(ctx)
	if err != nil {
		return err
	}
	u.log.Info("catalog cache warmed up", zap.Int("products", len(items)))
	return nil
}

// onOrderSuccess runs on the session bus with the orchestrator locked, so the
// journal and broker work happens off the dispatch path.
func (u *StorefrontService) onOrderSuccess(_ context.Context, _ events.Name, payload any) {
	evt, ok := payload.(events.OrderEvent)
	if !ok {
		u.log.Warn("unexpected order:success payload")
		return
	}
	at := u.opts.Now()
	u.pending.Add(1)
	go func() {
		defer u.pending.Done()
		u.recordOrder(context.Background(), evt.Request, evt.Result, at)
	}()
}

func (u *StorefrontService) recordOrder(ctx context.Context, req domain.OrderRequest, res *domain.OrderResult, at time.Time) {
	if u.repo != nil {
		receipt := domain.NewReceipt(req, res)
		if err := u.repo.Save(receipt); err != nil {
			u.log.Error("failed to journal receipt", zap.Error(err))
		}
	}

	if u.redisClient != nil {
		keys := make([]string, 0, len(req.Items))
		for _, id := range req.Items {
			keys = append(keys, ReceiptsCacheKey(id))
		}
		if len(keys) > 0 {
			if err := u.redisClient.Del(ctx, keys...).Err(); err != nil {
				u.log.Warn("receipts cache invalidation failed", zap.Error(err))
			}
		}
	}

	if u.publisher != nil {
		evt := domain.NewOrderCreatedEvent(req, res, at)
		if err := u.publisher.Publish(ctx, orderCreatedTopic, evt); err != nil {
			u.log.Error("failed to publish order.created", zap.Error(err))
		} else {
			u.log.Info("published order.created", zap.String("order_id", evt.OrderID))
		}
	}
}

// Wait blocks until every in-flight receipt has been recorded.
func (u *StorefrontService) Wait() {
	u.pending.Wait()
}

func (u *StorefrontService) ReceiptsByProduct(productId string) ([]domain.Receipt, error) {
	if u.repo == nil {
		return nil, ErrJournalDisabled
	}
	receipts, err := u.repo.FindByProductId(productId)
	if err != nil {
		return nil, err
	}
	if receipts == nil {
		return nil, ErrReceiptNotFound
	}
	return receipts, nil
}

func (u *StorefrontService) ReceiptByID(id uint64) (*domain.Receipt, error) {
	if u.repo == nil {
		return nil, ErrJournalDisabled
	}
	rc, err := u.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, ErrReceiptNotFound
	}
	return rc, nil
}
