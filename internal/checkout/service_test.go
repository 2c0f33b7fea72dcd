package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-food-orders/internal/apperr"
	"github.com/ariefcatur/go-food-orders/internal/cart"
	"github.com/ariefcatur/go-food-orders/internal/catalog"
	"github.com/ariefcatur/go-food-orders/internal/orders"
	"github.com/ariefcatur/go-food-orders/internal/payment"
	"github.com/ariefcatur/go-food-orders/internal/voucher"
)

var testNow = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

type fakeCarts struct{ view cart.View }

func (f *fakeCarts) ActiveCart(context.Context, string) (cart.View, error) { return f.view, nil }

type fakeCatalog struct{ foods map[string]catalog.Food }

func (f *fakeCatalog) Food(_ context.Context, id string) (catalog.Food, error) {
	fd, ok := f.foods[id]
	if !ok {
		return catalog.Food{}, apperr.NotFound("food")
	}
	return fd, nil
}

func (f *fakeCatalog) Shop(_ context.Context, id string) (catalog.Shop, error) {
	return catalog.Shop{ID: id, IsOpen: true}, nil
}

type fakeVouchers struct{ byCode map[string]voucher.Voucher }

func (f *fakeVouchers) ByCode(_ context.Context, _, code string) (voucher.Voucher, error) {
	v, ok := f.byCode[code]
	if !ok {
		return voucher.Voucher{}, apperr.NotFound("voucher")
	}
	return v, nil
}

type fakeWriter struct {
	created []orders.Order
	details [][]orders.Detail
	itemIDs [][]string
	// fail the first n attempts with ErrCodeTaken
	codeConflicts int
	err           error
}

func (f *fakeWriter) Create(_ context.Context, o orders.Order, ds []orders.Detail, ids []string) error {
	if f.err != nil {
		return f.err
	}
	if f.codeConflicts > 0 {
		f.codeConflicts--
		return orders.ErrCodeTaken
	}
	f.created = append(f.created, o)
	f.details = append(f.details, ds)
	f.itemIDs = append(f.itemIDs, ids)
	return nil
}

type fakeGateway struct {
	redirect payment.Redirect
	err      error
	requests []payment.SessionRequest
}

func (f *fakeGateway) CreateRedirect(_ context.Context, req payment.SessionRequest) (payment.Redirect, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return payment.Redirect{}, f.err
	}
	return f.redirect, nil
}

type fakeSink struct {
	created []orders.Order
}

func (s *fakeSink) OrderCreated(_ context.Context, o orders.Order, _ []orders.Detail) {
	s.created = append(s.created, o)
}
func (s *fakeSink) OrderUpdated(context.Context, orders.Order, string) {}

func testService() (*Service, *fakeWriter, *fakeGateway, *fakeSink) {
	carts := &fakeCarts{view: cart.View{
		ShopID: "s1",
		Items: []cart.Item{
			{ID: "ci-1", UserID: "u1", ShopID: "s1", FoodID: "f1", Qty: 2, Status: cart.StatusActive},
		},
	}}
	cat := &fakeCatalog{foods: map[string]catalog.Food{
		"f1": {ID: "f1", ShopID: "s1", Name: "Nasi Goreng", ImageURL: "img/f1.jpg", Price: 100000, DiscountPercent: 10, IsAvailable: true},
	}}
	vch := &fakeVouchers{byCode: map[string]voucher.Voucher{
		"SALE10": {
			ID: "v-1", ShopID: "s1", Code: "SALE10", Type: voucher.TypePercent, Value: 10,
			MinOrderAmount: 50000, StartDate: testNow.Add(-time.Hour), EndDate: testNow.Add(time.Hour),
			IsActive: true,
		},
	}}
	writer := &fakeWriter{}
	gw := &fakeGateway{redirect: payment.Redirect{URL: "https://pay.example/x", SessionID: "sess-1"}}
	sink := &fakeSink{}

	svc := &Service{
		Carts:                 carts,
		Catalog:               cat,
		Vouchers:              vch,
		Orders:                writer,
		Gateway:               gw,
		Events:                sink,
		ShippingFee:           20000,
		FastDeliverySurcharge: 10000,
		Now:                   func() time.Time { return testNow },
	}
	return svc, writer, gw, sink
}

func codRequest() Request {
	return Request{
		UserID:          "u1",
		ShopID:          "s1",
		DeliveryAddress: "Jl. Sudirman 1",
		PaymentMethod:   orders.MethodCOD,
	}
}

func TestCheckout_SubtotalFromSnapshot(t *testing.T) {
	svc, writer, _, sink := testService()

	res, err := svc.Checkout(context.Background(), codRequest())
	require.NoError(t, err)

	// 100,000 x 2 at 10% food discount
	assert.Equal(t, int64(180000), res.Order.Subtotal)
	assert.Equal(t, int64(0), res.Order.Discount)
	assert.Equal(t, int64(20000), res.Order.ShippingFee)
	assert.Equal(t, int64(200000), res.Order.Total)

	require.Len(t, writer.created, 1)
	assert.Equal(t, orders.StatusPending, writer.created[0].Status)
	assert.Equal(t, orders.PayCODPending, writer.created[0].PaymentStatus)
	assert.Equal(t, []string{"ci-1"}, writer.itemIDs[0])
	assert.Len(t, sink.created, 1)

	// line snapshots are complete and reproduce the subtotal
	require.Len(t, res.Details, 1)
	d := res.Details[0]
	assert.Equal(t, "Nasi Goreng", d.FoodName)
	assert.Equal(t, int64(100000), d.UnitPrice)
	assert.Equal(t, 10, d.DiscountPercent)
	var recomputed int64
	for _, d := range res.Details {
		recomputed += orders.LineSubtotal(d.UnitPrice, d.Qty, d.DiscountPercent)
	}
	assert.Equal(t, res.Order.Subtotal, recomputed)
}

func TestCheckout_WithVoucher(t *testing.T) {
	svc, writer, _, _ := testService()

	req := codRequest()
	req.VoucherCode = "SALE10"
	res, err := svc.Checkout(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, int64(180000), res.Order.Subtotal)
	assert.Equal(t, int64(18000), res.Order.Discount)
	assert.Equal(t, int64(20000), res.Order.ShippingFee)
	assert.Equal(t, int64(182000), res.Order.Total)
	require.NotNil(t, writer.created[0].VoucherID)
	assert.Equal(t, "v-1", *writer.created[0].VoucherID)
}

func TestCheckout_UnknownVoucher(t *testing.T) {
	svc, writer, _, _ := testService()

	req := codRequest()
	req.VoucherCode = "NOPE"
	_, err := svc.Checkout(context.Background(), req)

	assert.True(t, apperr.Is(err, apperr.CodeInvalidVoucher))
	assert.Empty(t, writer.created, "validation failures must not persist anything")
}

func TestCheckout_InapplicableVoucherSurfacesReasons(t *testing.T) {
	svc, _, _, _ := testService()
	svc.Vouchers.(*fakeVouchers).byCode["SALE10"] = voucher.Voucher{
		ID: "v-1", ShopID: "s1", Code: "SALE10", Type: voucher.TypePercent, Value: 10,
		MinOrderAmount: 500000, StartDate: testNow.Add(-time.Hour), EndDate: testNow.Add(time.Hour),
		IsActive: true,
	}

	req := codRequest()
	req.VoucherCode = "SALE10"
	_, err := svc.Checkout(context.Background(), req)

	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, apperr.CodeInvalidVoucher, e.Code)
	require.Len(t, e.Reasons, 1)
	assert.Contains(t, e.Reasons[0], "below minimum")
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc, _, _, _ := testService()
	svc.Carts.(*fakeCarts).view = cart.View{}

	_, err := svc.Checkout(context.Background(), codRequest())
	assert.True(t, apperr.Is(err, apperr.CodeEmptyCart))
}

func TestCheckout_CartFromOtherShopIsEmpty(t *testing.T) {
	svc, _, _, _ := testService()

	req := codRequest()
	req.ShopID = "s2"
	_, err := svc.Checkout(context.Background(), req)
	assert.True(t, apperr.Is(err, apperr.CodeEmptyCart))
}

func TestCheckout_UnavailableFoodAllOrNothing(t *testing.T) {
	svc, writer, _, _ := testService()
	cat := svc.Catalog.(*fakeCatalog)
	f := cat.foods["f1"]
	f.IsAvailable = false
	cat.foods["f1"] = f

	_, err := svc.Checkout(context.Background(), codRequest())
	assert.True(t, apperr.Is(err, apperr.CodeUnavailable))
	assert.Empty(t, writer.created)
}

func TestCheckout_FastDeliverySurcharge(t *testing.T) {
	svc, _, _, _ := testService()

	req := codRequest()
	req.FastDelivery = true
	res, err := svc.Checkout(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), res.Order.ShippingFee)
	assert.Equal(t, int64(210000), res.Order.Total)
}

func TestCheckout_OnlineGatewayRedirect(t *testing.T) {
	svc, writer, gw, _ := testService()

	req := codRequest()
	req.PaymentMethod = orders.MethodOnline
	res, err := svc.Checkout(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, orders.StatusPendingPayment, writer.created[0].Status)
	assert.Equal(t, orders.PayUnpaid, writer.created[0].PaymentStatus)
	require.NotNil(t, res.Redirect)
	assert.Equal(t, "https://pay.example/x", res.Redirect.URL)
	require.Len(t, gw.requests, 1)
	assert.Equal(t, res.Order.Code, gw.requests[0].OrderCode)
	assert.Equal(t, res.Order.Total, gw.requests[0].Amount)
}

func TestCheckout_GatewayFailureStillReturnsOrder(t *testing.T) {
	svc, writer, gw, sink := testService()
	gw.err = apperr.Internal(errors.New("gateway timeout"))

	req := codRequest()
	req.PaymentMethod = orders.MethodOnline
	res, err := svc.Checkout(context.Background(), req)

	require.Error(t, err)
	assert.Equal(t, writer.created[0].Code, res.Order.Code, "caller keeps the code to poll with")
	assert.Equal(t, orders.StatusPendingPayment, res.Order.Status)
	assert.Nil(t, res.Redirect)
	assert.Len(t, sink.created, 1, "the order exists; its event already went out")
}

func TestCheckout_RetriesOnCodeCollision(t *testing.T) {
	svc, writer, _, _ := testService()
	writer.codeConflicts = 2

	res, err := svc.Checkout(context.Background(), codRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, res.Order.Code)
	assert.Len(t, writer.created, 1)
}

func TestCheckout_GivesUpAfterRepeatedCollisions(t *testing.T) {
	svc, _, _, _ := testService()
	svc.Orders.(*fakeWriter).codeConflicts = 10

	_, err := svc.Checkout(context.Background(), codRequest())
	assert.ErrorIs(t, err, orders.ErrCodeTaken)
}

func TestCheckout_VoucherLimitRaceFailsCheckout(t *testing.T) {
	svc, writer, _, sink := testService()
	writer.err = apperr.Conflict("voucher usage limit reached")

	req := codRequest()
	req.VoucherCode = "SALE10"
	_, err := svc.Checkout(context.Background(), req)

	assert.True(t, apperr.Is(err, apperr.CodeConflict), "a racing order exhausting the voucher fails this checkout")
	assert.Empty(t, writer.created)
	assert.Empty(t, sink.created, "nothing committed, nothing announced")
}

func TestCheckout_ConcurrentCartConsumptionConflict(t *testing.T) {
	svc, _, _, sink := testService()
	svc.Orders.(*fakeWriter).err = apperr.Conflict("cart changed during checkout")

	_, err := svc.Checkout(context.Background(), codRequest())
	assert.True(t, apperr.Is(err, apperr.CodeConflict))
	assert.Empty(t, sink.created, "no event when nothing was committed")
}

func TestCheckout_BadRequests(t *testing.T) {
	svc, _, _, _ := testService()

	req := codRequest()
	req.DeliveryAddress = ""
	_, err := svc.Checkout(context.Background(), req)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidState))

	req = codRequest()
	req.PaymentMethod = "WIRE"
	_, err = svc.Checkout(context.Background(), req)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidState))
}
