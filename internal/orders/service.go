package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/joao-fontenele/bizops-backend/internal/apperr"
	"github.com/joao-fontenele/bizops-backend/internal/domain"
)

var tracer = otel.Tracer("orders")

const defaultPlacementTimeout = 10 * time.Second

// Publisher is satisfied by messaging.Producer.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type PlaceOrderInput struct {
	ClientName  string
	ProductName string
	Quantity    int
	OrderDate   domain.Date
	Status      string
}

type Placement struct {
	OrderID   int64           `json:"order_id"`
	InvoiceID int64           `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
}

type Service struct {
	store     Store
	publisher Publisher
	logger    zerolog.Logger
	timeout   time.Duration
	now       func() time.Time
	meters    metric.MeterProvider

	placed   metric.Int64Counter
	rejected metric.Int64Counter
	amount   metric.Float64Counter
}

type ServiceOption func(*Service)

// WithPublisher emits an OrderPlacedEvent after every committed placement.
func WithPublisher(p Publisher) ServiceOption {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMeterProvider records the order counters on mp instead of the global provider.
func WithMeterProvider(mp metric.MeterProvider) ServiceOption {
	return func(s *Service) {
		s.meters = mp
	}
}

func NewService(store Store, logger zerolog.Logger, opts ...ServiceOption) (*Service, error) {
	s := &Service{
		store:   store,
		logger:  logger,
		timeout: defaultPlacementTimeout,
		now:     time.Now,
		meters:  otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		opt(s)
	}

	meter := s.meters.Meter("orders")
	var err error
	if s.placed, err = meter.Int64Counter("orders.placed",
		metric.WithDescription("Orders committed together with their invoice")); err != nil {
		return nil, err
	}
	if s.rejected, err = meter.Int64Counter("orders.rejected",
		metric.WithDescription("Order placements that were rejected or failed")); err != nil {
		return nil, err
	}
	if s.amount, err = meter.Float64Counter("orders.invoiced_amount",
		metric.WithDescription("Sum of invoice amounts for placed orders")); err != nil {
		return nil, err
	}

	return s, nil
}

func (in PlaceOrderInput) validate() error {
	details := map[string]string{}
	if strings.TrimSpace(in.ClientName) == "" {
		details["client_name"] = "is required"
	}
	if strings.TrimSpace(in.ProductName) == "" {
		details["product_name"] = "is required"
	}
	if in.Quantity <= 0 {
		details["quantity"] = "must be greater than 0"
	}
	if in.OrderDate.IsZero() {
		details["order_date"] = "is required"
	}
	if len(details) > 0 {
		return apperr.InvalidArgument("validation failed").WithDetails(details)
	}
	return nil
}

// PlaceOrder checks stock, creates the order and its invoice and decrements
// stock as one transaction. The product row stays locked from the stock
// check until commit, so concurrent placements on the same product are
// serialized and stock never goes negative. Either everything commits or
// nothing is visible.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*Placement, error) {
	ctx, span := tracer.Start(ctx, "orders.PlaceOrder", trace.WithAttributes(
		attribute.String("order.product_name", in.ProductName),
		attribute.Int("order.quantity", in.Quantity),
	))
	defer span.End()

	if err := in.validate(); err != nil {
		s.reject(ctx, span, err)
		return nil, err
	}
	if in.Status == "" {
		in.Status = domain.OrderStatusPending
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		placement Placement
		item      domain.InventoryItem
	)
	err := s.store.WithinTx(ctx, func(tx PlacementTx) error {
		var err error
		item, err = tx.LockProduct(ctx, in.ProductName)
		if err != nil {
			return err
		}

		if item.StockQuantity < in.Quantity {
			return apperr.ErrInsufficientStock
		}

		amount := item.Price.Mul(decimal.NewFromInt(int64(in.Quantity)))

		orderID, err := tx.InsertOrder(ctx, domain.Order{
			ClientName:  in.ClientName,
			ProductName: in.ProductName,
			Quantity:    in.Quantity,
			OrderDate:   in.OrderDate,
			Status:      in.Status,
		})
		if err != nil {
			return err
		}

		invoiceID, err := tx.InsertInvoice(ctx, domain.Invoice{
			OrderID: orderID,
			Amount:  amount,
			DueDate: in.OrderDate,
			Status:  domain.InvoiceStatusPending,
		})
		if err != nil {
			return err
		}

		if err := tx.DecrementStock(ctx, item.ID, in.Quantity); err != nil {
			return err
		}

		placement = Placement{OrderID: orderID, InvoiceID: invoiceID, Amount: amount}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			s.logger.Error().Err(err).
				Str("product_name", in.ProductName).
				Int("quantity", in.Quantity).
				Msg("order placement timed out, outcome unknown until next read")
			err = apperr.Wrap(apperr.CodeStorageFailure, err, "order placement timed out")
		}
		s.reject(ctx, span, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("order.id", placement.OrderID),
		attribute.Int64("invoice.id", placement.InvoiceID),
	)
	s.placed.Add(ctx, 1)
	s.amount.Add(ctx, placement.Amount.InexactFloat64())

	s.logger.Info().
		Int64("order_id", placement.OrderID).
		Int64("invoice_id", placement.InvoiceID).
		Str("product_name", in.ProductName).
		Int("quantity", in.Quantity).
		Str("amount", placement.Amount.StringFixed(2)).
		Msg("order placed")

	s.publish(ctx, in, item, placement)

	return &placement, nil
}

func (s *Service) reject(ctx context.Context, span trace.Span, err error) {
	code := apperr.Storage(err).Code()
	span.RecordError(err)
	span.SetStatus(codes.Error, string(code))
	s.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", string(code))))
}

func (s *Service) publish(ctx context.Context, in PlaceOrderInput, item domain.InventoryItem, p Placement) {
	if s.publisher == nil {
		return
	}

	event := domain.OrderPlacedEvent{
		EventID:          uuid.New().String(),
		OrderID:          p.OrderID,
		InvoiceID:        p.InvoiceID,
		ClientName:       in.ClientName,
		ProductName:      in.ProductName,
		Quantity:         in.Quantity,
		Amount:           p.Amount,
		RemainingStock:   item.StockQuantity - in.Quantity,
		ReorderThreshold: item.ReorderThreshold,
		Timestamp:        s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, in.ProductName, event); err != nil {
		s.logger.Error().Err(err).Int64("order_id", p.OrderID).Msg("failed to publish order placed event")
	}
}
