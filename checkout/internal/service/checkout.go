package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	cartResponse "github.com/Alturino/focushoney/cart/pkg/response"
	"github.com/Alturino/focushoney/cart/pkg/session"
	"github.com/Alturino/focushoney/checkout/pkg/request"
	"github.com/Alturino/focushoney/checkout/pkg/response"
	commonErrors "github.com/Alturino/focushoney/internal/common/errors"
	"github.com/Alturino/focushoney/internal/common/validate"
	"github.com/Alturino/focushoney/internal/config"
	"github.com/Alturino/focushoney/internal/log"
	"github.com/Alturino/focushoney/internal/otel"
	orderResponse "github.com/Alturino/focushoney/order/pkg/response"
	paymentResponse "github.com/Alturino/focushoney/payment/pkg/response"
)

type Verifier interface {
	Verify(c context.Context, reference string) (paymentResponse.Verification, error)
}

type OrderWriter interface {
	InsertOrder(c context.Context, order orderResponse.Order) (orderResponse.Order, error)
}

type OrderPublisher interface {
	PublishOrderCreated(c context.Context, order orderResponse.Order) error
}

type Option func(*Orchestrator)

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

func WithIDGenerator(newID func() uuid.UUID) Option {
	return func(o *Orchestrator) {
		o.newID = newID
	}
}

// pending is the cart snapshot a payment widget was opened for.
type pending struct {
	identity session.Identity
	details  orderResponse.ShippingDetails
	items    []cartResponse.CartItem
	total    decimal.Decimal
	widget   response.PaymentWidget
}

type flow struct {
	state    response.State
	mode     string
	pending  *pending
	last     response.Checkout
	lastSeen time.Time
}

// Orchestrator runs one checkout state machine per device. Remote calls happen outside
// the lock while the flow sits in ConfirmingOrSubmitting, so a second submission for the
// same device is rejected instead of queued.
type Orchestrator struct {
	mu        sync.Mutex
	flows     map[string]*flow
	resolver  *session.Resolver
	orders    OrderWriter
	verifier  Verifier
	publisher OrderPublisher
	cfg       config.Checkout
	now       func() time.Time
	newID     func() uuid.UUID
}

func NewOrchestrator(
	resolver *session.Resolver,
	orders OrderWriter,
	verifier Verifier,
	publisher OrderPublisher,
	cfg config.Checkout,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		flows:     map[string]*flow{},
		resolver:  resolver,
		orders:    orders,
		verifier:  verifier,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
		newID:     uuid.New,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) flow(deviceID string) *flow {
	f, ok := o.flows[deviceID]
	if !ok {
		f = &flow{state: response.StateCollectingDetails}
		o.flows[deviceID] = f
	}
	return f
}

// begin moves the flow into ConfirmingOrSubmitting when allowed is true for its state.
func (o *Orchestrator) begin(deviceID string, allowed func(f *flow) bool) (*flow, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	f := o.flow(deviceID)
	f.lastSeen = o.now()
	if f.state == response.StateConfirmingOrSubmitting || !allowed(f) {
		return nil, fmt.Errorf("checkout in state=%s with error=%w", f.state, commonErrors.ErrInvalidTransition)
	}
	f.state = response.StateConfirmingOrSubmitting
	return f, nil
}

func (o *Orchestrator) finish(f *flow, state response.State, result response.Checkout, err error) response.Checkout {
	o.mu.Lock()
	defer o.mu.Unlock()

	f.state = state
	f.lastSeen = o.now()
	result.State = state
	if result.Mode == "" {
		result.Mode = f.mode
	}
	if err != nil {
		result.Error = err.Error()
	}
	f.last = result
	return result
}

func (o *Orchestrator) State(identity session.Identity) response.Checkout {
	o.mu.Lock()
	defer o.mu.Unlock()

	f, ok := o.flows[identity.DeviceID]
	if !ok {
		return response.Checkout{State: response.StateCollectingDetails}
	}
	result := f.last
	result.State = f.state
	if f.state == response.StateConfirmingOrSubmitting {
		result.Mode = f.mode
	}
	return result
}

// Sweep forgets flows idle for longer than idle. Flows with a request in flight are kept.
func (o *Orchestrator) Sweep(idle time.Duration) int {
	o.mu.Lock()
	defer o.mu.Unlock()

	deadline := o.now().Add(-idle)
	removed := 0
	for deviceID, f := range o.flows {
		if f.state != response.StateConfirmingOrSubmitting && f.lastSeen.Before(deadline) {
			delete(o.flows, deviceID)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until c is done.
func (o *Orchestrator) RunSweeper(c context.Context, interval time.Duration, idle time.Duration) {
	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "Orchestrator RunSweeper").Logger()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.Done():
			return
		case <-ticker.C:
			if removed := o.Sweep(idle); removed > 0 {
				logger.Debug().Int("removed", removed).Msg("swept idle checkout flows")
			}
		}
	}
}

// Reset drops a pending payment and returns the device to CollectingDetails.
func (o *Orchestrator) Reset(identity session.Identity) (response.Checkout, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	f, ok := o.flows[identity.DeviceID]
	if !ok {
		return response.Checkout{State: response.StateCollectingDetails}, nil
	}
	if f.state == response.StateConfirmingOrSubmitting {
		return response.Checkout{}, fmt.Errorf("checkout in state=%s with error=%w", f.state, commonErrors.ErrInvalidTransition)
	}
	delete(o.flows, identity.DeviceID)
	return response.Checkout{State: response.StateCollectingDetails}, nil
}

func (o *Orchestrator) Submit(c context.Context, identity session.Identity, req request.Checkout) (response.Checkout, error) {
	c, span := otel.Tracer.Start(c, "Orchestrator Submit")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Orchestrator Submit").
		Str(log.KeyDeviceID, identity.DeviceID).
		Str(log.KeyUserID, identity.Owner()).
		Str(log.KeyCheckoutMode, req.Mode).
		Logger()

	if identity.DeviceID == "" {
		otel.RecordError(commonErrors.ErrMissingDeviceID, span)
		return response.Checkout{}, commonErrors.ErrMissingDeviceID
	}

	// a rejected resubmission must not lose a widget the user may already have paid through
	var previous response.State
	f, err := o.begin(identity.DeviceID, func(f *flow) bool {
		previous = f.state
		return true
	})
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Checkout{}, err
	}
	reject := func(err error) (response.Checkout, error) {
		checkoutSubmissions.WithLabelValues(req.Mode, resultInvalid).Inc()
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		o.mu.Lock()
		p := f.pending
		o.mu.Unlock()
		if p != nil {
			o.finish(f, previous, response.Checkout{Total: p.total, Payment: &p.widget}, err)
		} else {
			o.finish(f, response.StateCollectingDetails, response.Checkout{}, err)
		}
		return response.Checkout{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "validating checkout").Logger()
	logger.Trace().Msg("validating checkout")
	if err = o.validate(c, identity, req); err != nil {
		return reject(err)
	}
	logger.Trace().Msg("validated checkout")

	logger = logger.With().Str(log.KeyProcess, "reading cart").Logger()
	logger.Trace().Msg("reading cart")
	items, err := o.cartItems(c, identity)
	if err != nil {
		return reject(err)
	}
	o.mu.Lock()
	f.mode = req.Mode
	f.pending = nil
	o.mu.Unlock()
	total := cartResponse.Total(items)
	logger = logger.With().
		Int(log.KeyCartItemsCount, len(items)).
		Str(log.KeyCartTotal, total.String()).
		Logger()
	logger.Trace().Msg("read cart")

	details := shippingDetails(req)
	c = logger.WithContext(c)
	switch req.Mode {
	case request.ModeWhatsapp:
		result := o.handOff(c, items, total, req)
		checkoutSubmissions.WithLabelValues(req.Mode, resultSuccess).Inc()
		return o.finish(f, response.StateCompleted, result, nil), nil
	case request.ModeCashOnDelivery:
		order := o.newOrder(identity, details, items, total, orderResponse.PaymentMethodCashOnDelivery, orderResponse.StatusPending, "")
		result, err := o.placeOrder(c, identity, order)
		if err != nil {
			checkoutSubmissions.WithLabelValues(req.Mode, resultFailed).Inc()
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			o.finish(f, response.StateFailed, response.Checkout{Total: total}, err)
			return response.Checkout{}, err
		}
		checkoutSubmissions.WithLabelValues(req.Mode, resultSuccess).Inc()
		return o.finish(f, response.StateCompleted, result, nil), nil
	default:
		widget := response.PaymentWidget{
			PublicKey: o.cfg.PaystackPublicKey,
			Email:     strings.TrimSpace(req.Email),
			Amount:    total.Shift(2).Round(0).IntPart(),
			Currency:  o.cfg.Currency,
		}
		o.mu.Lock()
		f.pending = &pending{identity: identity, details: details, items: items, total: total, widget: widget}
		o.mu.Unlock()
		logger.Info().Int64("amount", widget.Amount).Msg("awaiting payment verification")
		checkoutSubmissions.WithLabelValues(req.Mode, resultSuccess).Inc()
		return o.finish(f, response.StateAwaitingPaymentVerification, response.Checkout{Total: total, Payment: &widget}, nil), nil
	}
}

// ConfirmPayment writes the order only when the verifier reports success. Every other
// outcome leaves the cart alone and the payment retryable.
func (o *Orchestrator) ConfirmPayment(c context.Context, identity session.Identity, reference string) (response.Checkout, error) {
	c, span := otel.Tracer.Start(c, "Orchestrator ConfirmPayment")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Orchestrator ConfirmPayment").
		Str(log.KeyDeviceID, identity.DeviceID).
		Str(log.KeyUserID, identity.Owner()).
		Str(log.KeyPaymentReference, reference).
		Logger()

	if strings.TrimSpace(reference) == "" {
		err := fmt.Errorf("missing payment reference with error=%w", commonErrors.ErrValidation)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Checkout{}, err
	}
	if !identity.Authenticated() {
		err := fmt.Errorf("confirming payment with error=%w", commonErrors.ErrAuthRequired)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Checkout{}, err
	}

	var p *pending
	f, err := o.begin(identity.DeviceID, func(f *flow) bool {
		if f.pending == nil || f.pending.identity.UserID != identity.UserID {
			return false
		}
		p = f.pending
		return f.state == response.StateAwaitingPaymentVerification || f.state == response.StateFailed
	})
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Checkout{}, err
	}
	retry := response.Checkout{Total: p.total, Payment: &p.widget}

	logger = logger.With().Str(log.KeyProcess, "verifying payment").Logger()
	logger.Info().Msg("verifying payment")
	verification, err := o.verifier.Verify(logger.WithContext(c), reference)
	if err != nil || !verification.Succeeded() {
		if err == nil {
			err = fmt.Errorf("payment status=%s", verification.Status)
		}
		err = fmt.Errorf("failed verifying payment with error=%w", errors.Join(err, commonErrors.ErrVerificationFailed))
		paymentVerifications.WithLabelValues(resultFailed).Inc()
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		o.finish(f, response.StateFailed, retry, err)
		return response.Checkout{}, err
	}
	if !verification.Pays(p.widget.Amount, p.widget.Currency) || verification.Reference != reference {
		err = fmt.Errorf(
			"payment reference=%s amount=%d currency=%s does not match checkout amount=%d currency=%s with error=%w",
			verification.Reference, verification.Amount, verification.Currency,
			p.widget.Amount, p.widget.Currency, commonErrors.ErrVerificationFailed,
		)
		paymentVerifications.WithLabelValues(resultMismatch).Inc()
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		o.finish(f, response.StateFailed, retry, err)
		return response.Checkout{}, err
	}
	paymentVerifications.WithLabelValues(resultSuccess).Inc()
	logger.Info().Str(log.KeyVerificationStatus, verification.Status).Msg("verified payment")

	order := o.newOrder(p.identity, p.details, p.items, p.total, orderResponse.PaymentMethodPaystack, orderResponse.StatusProcessing, reference)
	result, err := o.placeOrder(logger.WithContext(c), identity, order)
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		o.finish(f, response.StateFailed, retry, err)
		return response.Checkout{}, err
	}

	o.mu.Lock()
	f.pending = nil
	o.mu.Unlock()
	return o.finish(f, response.StateCompleted, result, nil), nil
}

func (o *Orchestrator) validate(c context.Context, identity session.Identity, req request.Checkout) error {
	if err := validate.New().StructCtx(c, req); err != nil {
		return fmt.Errorf("failed validating checkout with error=%w", errors.Join(err, commonErrors.ErrValidation))
	}
	switch req.Mode {
	case request.ModeCashOnDelivery, request.ModePaystack:
		if !identity.Authenticated() {
			return fmt.Errorf("checkout mode=%s with error=%w", req.Mode, commonErrors.ErrAuthRequired)
		}
	}
	if req.Mode == request.ModePaystack {
		if strings.TrimSpace(req.Email) == "" {
			return fmt.Errorf("missing email for payment with error=%w", commonErrors.ErrValidation)
		}
		if o.cfg.PaystackPublicKey == "" {
			return errors.New("payment public key is not configured")
		}
	}
	return nil
}

func (o *Orchestrator) cartItems(c context.Context, identity session.Identity) ([]cartResponse.CartItem, error) {
	sess, err := o.resolver.Resolve(c, identity)
	if err != nil {
		return nil, fmt.Errorf("failed resolving session with error=%w", err)
	}
	items, err := sess.Cart().Items(c)
	if err != nil {
		return nil, fmt.Errorf("failed reading cart with error=%w", err)
	}
	if len(items) == 0 {
		return nil, commonErrors.ErrEmptyCart
	}
	return items, nil
}

func (o *Orchestrator) handOff(c context.Context, items []cartResponse.CartItem, total decimal.Decimal, req request.Checkout) response.Checkout {
	logger := zerolog.Ctx(c).With().Str(log.KeyProcess, "building message hand-off").Logger()
	messageURL := MessageURL(o.cfg.WhatsappPhone, OrderMessage(items, total, req))
	logger.Info().Msg("built message hand-off")
	return response.Checkout{Total: total, MessageURL: messageURL}
}

func (o *Orchestrator) newOrder(
	identity session.Identity,
	details orderResponse.ShippingDetails,
	items []cartResponse.CartItem,
	total decimal.Decimal,
	paymentMethod string,
	status string,
	reference string,
) orderResponse.Order {
	orderItems := make([]orderResponse.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, orderResponse.OrderItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price.Amount(),
			Image:    item.Image,
			Product:  item.ID,
		})
	}
	return orderResponse.Order{
		ID:              o.newID(),
		UserID:          identity.UserID,
		CreatedAt:       o.now(),
		OrderItems:      orderItems,
		ShippingAddress: details,
		PaymentMethod:   paymentMethod,
		PaymentRef:      reference,
		Status:          status,
		TotalPrice:      total,
	}
}

// placeOrder writes the order, then clears the cart and announces it. Once the order is
// written, clear and publish failures are only logged.
func (o *Orchestrator) placeOrder(c context.Context, identity session.Identity, order orderResponse.Order) (response.Checkout, error) {
	c, span := otel.Tracer.Start(c, "Orchestrator placeOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Orchestrator placeOrder").
		Str(log.KeyOrderID, order.ID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "writing order").Logger()
	logger.Info().Msg("writing order")
	written, err := o.orders.InsertOrder(c, order)
	if err != nil {
		// a reused payment reference is a verification failure, not an outage
		if !errors.Is(err, commonErrors.ErrPersistence) && !errors.Is(err, commonErrors.ErrVerificationFailed) {
			err = errors.Join(err, commonErrors.ErrPersistence)
		}
		err = fmt.Errorf("failed writing order with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Checkout{}, err
	}
	ordersWritten.WithLabelValues(written.PaymentMethod).Inc()
	logger.Info().Msg("wrote order")

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	logger.Info().Msg("clearing cart")
	if sess, err := o.resolver.Resolve(c, identity); err != nil {
		logger.Error().Err(err).Msg("failed resolving session for cart clear")
	} else if err := sess.Cart().Clear(c); err != nil {
		logger.Error().Err(err).Msg("failed clearing cart after order")
	} else {
		logger.Info().Msg("cleared cart")
	}

	if o.publisher != nil {
		logger = logger.With().Str(log.KeyProcess, "publishing order created").Logger()
		if err := o.publisher.PublishOrderCreated(c, written); err != nil {
			logger.Warn().Err(err).Msg("failed publishing order created")
		}
	}

	return response.Checkout{
		Total:    written.TotalPrice,
		Order:    &written,
		Redirect: response.RedirectOrders,
	}, nil
}

func shippingDetails(req request.Checkout) orderResponse.ShippingDetails {
	note := strings.TrimSpace(req.Note)
	if note == "" {
		note = orderResponse.NoteNotApplicable
	}
	return orderResponse.ShippingDetails{
		Name:    strings.TrimSpace(req.Name),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
		Note:    note,
	}
}
