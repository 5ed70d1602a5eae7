package inventory_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"finitefield.org/stock-admin/internal/admin/catalog"
	"finitefield.org/stock-admin/internal/admin/inventory"
)

func newController(t *testing.T, records []catalog.Record, opts ...func(*inventory.Options)) (*inventory.Controller, *catalog.StaticService) {
	t.Helper()

	svc := catalog.NewStaticService(records)
	options := inventory.Options{Service: svc}
	for _, opt := range opts {
		opt(&options)
	}
	ctrl, err := inventory.NewController(options)
	require.NoError(t, err)
	require.NoError(t, ctrl.Load(context.Background()))
	return ctrl, svc
}

func seed() []catalog.Record {
	return []catalog.Record{
		{"PRODUCTO": "Widget", "CATEGORIA": "Tools", "INVENTARIO": "10", "PRECIO": "$2.50", "IMAGEN": ""},
		{"PRODUCTO": "Gadget", "CATEGORIA": "Tools", "INVENTARIO": 2, "PRECIO": 4},
	}
}

func TestControllerLoadEndToEnd(t *testing.T) {
	t.Parallel()

	ctrl, _ := newController(t, seed())

	p, ok := ctrl.Store().Find("Widget")
	require.True(t, ok)
	require.Equal(t, "Widget", p.Title)
	require.Equal(t, "Tools", p.Category)
	require.Equal(t, 10, p.Stock)
	require.True(t, p.Price.Equal(decimal.RequireFromString("2.5")))
	require.Equal(t, "", p.ImageURL)
	require.Equal(t, "Widget", p.BusinessKey)
}

func TestControllerLoadFailureClearsStore(t *testing.T) {
	t.Parallel()

	ctrl, svc := newController(t, seed())
	require.Equal(t, 2, ctrl.Store().Count())

	svc.SetListErr(errors.New("offline"))
	require.Error(t, ctrl.Load(context.Background()))
	require.Zero(t, ctrl.Store().Count())
}

func TestControllerRefreshFailureKeepsStore(t *testing.T) {
	t.Parallel()

	ctrl, svc := newController(t, seed())
	svc.SetListErr(errors.New("offline"))

	require.Error(t, ctrl.Refresh(context.Background()))
	require.Equal(t, 2, ctrl.Store().Count())
}

func TestControllerCreate(t *testing.T) {
	t.Parallel()

	ctrl, svc := newController(t, seed())
	err := ctrl.Create(context.Background(), inventory.ProductInput{
		Title:    " Sprocket ",
		Category: "Parts",
		Stock:    7,
		Price:    decimal.RequireFromString("1.25"),
	})
	require.NoError(t, err)
	require.Equal(t, 3, ctrl.Store().Count())

	p, ok := ctrl.Store().Find("Sprocket")
	require.True(t, ok)
	require.Equal(t, 7, p.Stock)
	require.Equal(t, 1, svc.WriteCalls())
}

func TestControllerCreateValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input inventory.ProductInput
		field string
	}{
		{name: "missing title", input: inventory.ProductInput{Title: "  ", Category: "A"}, field: "title"},
		{name: "missing category", input: inventory.ProductInput{Title: "A"}, field: "category"},
		{name: "negative stock", input: inventory.ProductInput{Title: "A", Category: "B", Stock: -1}, field: "stock"},
		{name: "negative price", input: inventory.ProductInput{Title: "A", Category: "B", Price: decimal.NewFromInt(-1)}, field: "price"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ctrl, svc := newController(t, seed())

			err := ctrl.Create(context.Background(), tc.input)
			var verr *catalog.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tc.field, verr.Field)
			require.Zero(t, svc.WriteCalls())
			require.Equal(t, 2, ctrl.Store().Count())
		})
	}
}

func TestControllerCreateRecordLimit(t *testing.T) {
	t.Parallel()

	ctrl, svc := newController(t, seed(), func(o *inventory.Options) { o.RecordLimit = 2 })
	require.True(t, ctrl.Snapshot(inventory.DefaultViewState()).LimitReached)

	err := ctrl.Create(context.Background(), inventory.ProductInput{Title: "X", Category: "Y"})
	var verr *catalog.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Zero(t, svc.WriteCalls())
}

func TestControllerCreateRemoteFailureKeepsStore(t *testing.T) {
	t.Parallel()

	ctrl, svc := newController(t, seed())
	svc.SetWriteErr(&catalog.RemoteError{Status: 200, Message: "Hoja bloqueada"})

	err := ctrl.Create(context.Background(), inventory.ProductInput{Title: "X", Category: "Y"})
	var rerr *catalog.RemoteError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, "Hoja bloqueada", rerr.Message)
	require.Equal(t, 2, ctrl.Store().Count())
}

func TestControllerUpdateUsesCapturedKey(t *testing.T) {
	t.Parallel()

	ctrl, svc := newController(t, seed())
	target, err := ctrl.BeginEdit("Widget")
	require.NoError(t, err)

	err = ctrl.Update(context.Background(), target, inventory.ProductInput{
		Title:    "Renamed",
		Category: "Hardware",
		Stock:    4,
		Price:    decimal.NewFromInt(3),
	})
	require.NoError(t, err)

	p, ok := ctrl.Store().Find("Widget")
	require.True(t, ok, "title must not change on update")
	require.Equal(t, "Hardware", p.Category)
	require.Equal(t, 4, p.Stock)
	_, ok = ctrl.Store().Find("Renamed")
	require.False(t, ok)
	require.Equal(t, "Widget", svc.Records()[0]["PRODUCTO"])
}

func TestControllerBeginEditUnknownKey(t *testing.T) {
	t.Parallel()

	ctrl, _ := newController(t, seed())
	_, err := ctrl.BeginEdit("Nope")
	require.ErrorIs(t, err, inventory.ErrProductNotFound)
}

func TestControllerAdjustStock(t *testing.T) {
	t.Parallel()

	ctrl, svc := newController(t, seed())
	ctx := context.Background()

	require.NoError(t, ctrl.AdjustStock(ctx, "Gadget", 3, inventory.DirectionAdd))
	p, _ := ctrl.Store().Find("Gadget")
	require.Equal(t, 5, p.Stock)

	require.NoError(t, ctrl.AdjustStock(ctx, "Gadget", 5, inventory.DirectionSubtract))
	p, _ = ctrl.Store().Find("Gadget")
	require.Equal(t, 0, p.Stock)
	require.Equal(t, 2, svc.WriteCalls())
}

func TestControllerAdjustStockRejectsNegativeResult(t *testing.T) {
	t.Parallel()

	ctrl, svc := newController(t, seed())
	listsBefore := svc.ListCalls()

	err := ctrl.AdjustStock(context.Background(), "Gadget", 3, inventory.DirectionSubtract)
	var verr *catalog.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Zero(t, svc.WriteCalls())
	require.Equal(t, listsBefore+1, svc.ListCalls())

	p, _ := ctrl.Store().Find("Gadget")
	require.Equal(t, 2, p.Stock)
}

func TestControllerAdjustStockRejectsNonPositiveDelta(t *testing.T) {
	t.Parallel()

	ctrl, svc := newController(t, seed())
	listsBefore := svc.ListCalls()

	for _, delta := range []int{0, -2} {
		err := ctrl.AdjustStock(context.Background(), "Gadget", delta, inventory.DirectionAdd)
		var verr *catalog.ValidationError
		require.ErrorAs(t, err, &verr)
	}
	require.Equal(t, listsBefore, svc.ListCalls())
	require.Zero(t, svc.WriteCalls())
}

func TestControllerAdjustStockRejectsOverflow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		delta     int
		dir       inventory.Direction
		wantLists int
	}{
		{name: "add past ceiling", delta: catalog.MaxStock - 1, dir: inventory.DirectionAdd, wantLists: 1},
		{name: "add huge delta", delta: math.MaxInt, dir: inventory.DirectionAdd, wantLists: 0},
		{name: "subtract huge delta", delta: math.MaxInt, dir: inventory.DirectionSubtract, wantLists: 0},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl, svc := newController(t, seed())
			listsBefore := svc.ListCalls()

			err := ctrl.AdjustStock(context.Background(), "Gadget", tc.delta, tc.dir)
			var verr *catalog.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, "delta", verr.Field)
			require.Zero(t, svc.WriteCalls())
			require.Equal(t, listsBefore+tc.wantLists, svc.ListCalls())

			p, _ := ctrl.Store().Find("Gadget")
			require.Equal(t, 2, p.Stock)
		})
	}
}

func TestControllerAdjustStockReachesCeiling(t *testing.T) {
	t.Parallel()

	ctrl, _ := newController(t, seed())
	require.NoError(t, ctrl.AdjustStock(context.Background(), "Gadget", catalog.MaxStock-2, inventory.DirectionAdd))

	p, _ := ctrl.Store().Find("Gadget")
	require.Equal(t, catalog.MaxStock, p.Stock)
}

func TestControllerAdjustStockReadsFreshValue(t *testing.T) {
	t.Parallel()

	ctrl, svc := newController(t, seed())

	// The sheet was edited elsewhere after the last load.
	stock := 1
	_, err := svc.Update(context.Background(), "Gadget", catalog.Changes{Stock: &stock})
	require.NoError(t, err)

	err = ctrl.AdjustStock(context.Background(), "Gadget", 2, inventory.DirectionSubtract)
	var verr *catalog.ValidationError
	require.ErrorAs(t, err, &verr)

	p, _ := ctrl.Store().Find("Gadget")
	require.Equal(t, 2, p.Stock, "pre-read must not touch the store")
}

func TestControllerDeleteFlow(t *testing.T) {
	t.Parallel()

	ctrl, svc := newController(t, seed())
	ctx := context.Background()

	ticket, err := ctrl.BeginDelete("Widget")
	require.NoError(t, err)
	require.Equal(t, inventory.DeletePhaseProceed, ticket.Phase)

	err = ctrl.ConfirmDelete(ctx, ticket.ID, "ELIMINAR")
	require.ErrorIs(t, err, inventory.ErrTicketPhase)

	ticket, err = ctrl.ProceedDelete(ticket.ID)
	require.NoError(t, err)
	require.Equal(t, inventory.DeletePhaseConfirm, ticket.Phase)

	err = ctrl.ConfirmDelete(ctx, ticket.ID, "borrar")
	var verr *catalog.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Zero(t, svc.WriteCalls())
	require.Equal(t, 2, ctrl.Store().Count())

	require.NoError(t, ctrl.ConfirmDelete(ctx, ticket.ID, "  eliminar "))
	require.Equal(t, 1, svc.WriteCalls())
	require.Equal(t, 1, ctrl.Store().Count())
	_, ok := ctrl.Store().Find("Widget")
	require.False(t, ok)

	_, err = ctrl.Ticket(ticket.ID)
	require.ErrorIs(t, err, inventory.ErrTicketNotFound)
}

func TestControllerCancelDelete(t *testing.T) {
	t.Parallel()

	ctrl, svc := newController(t, seed())

	ticket, err := ctrl.BeginDelete("Widget")
	require.NoError(t, err)
	_, err = ctrl.ProceedDelete(ticket.ID)
	require.NoError(t, err)

	ctrl.CancelDelete(ticket.ID)
	err = ctrl.ConfirmDelete(context.Background(), ticket.ID, "ELIMINAR")
	require.ErrorIs(t, err, inventory.ErrTicketNotFound)
	require.Zero(t, svc.WriteCalls())
}

func TestControllerDeleteTicketSuperseded(t *testing.T) {
	t.Parallel()

	ctrl, svc := newController(t, seed())

	first, err := ctrl.BeginDelete("Widget")
	require.NoError(t, err)
	_, err = ctrl.ProceedDelete(first.ID)
	require.NoError(t, err)

	second, err := ctrl.BeginDelete("Gadget")
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	_, err = ctrl.Ticket(first.ID)
	require.ErrorIs(t, err, inventory.ErrTicketNotFound)
	err = ctrl.ConfirmDelete(context.Background(), first.ID, "ELIMINAR")
	require.ErrorIs(t, err, inventory.ErrTicketNotFound)

	// Cancelling the stale id leaves the newer ticket alone.
	ctrl.CancelDelete(first.ID)
	_, err = ctrl.Ticket(second.ID)
	require.NoError(t, err)

	ctrl.DiscardDelete()
	_, err = ctrl.ProceedDelete(second.ID)
	require.ErrorIs(t, err, inventory.ErrTicketNotFound)
	require.Zero(t, svc.WriteCalls())
}

func TestControllerDeleteTicketExpires(t *testing.T) {
	t.Parallel()

	var (
		mu  sync.Mutex
		now = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		now = now.Add(d)
		mu.Unlock()
	}

	ctrl, svc := newController(t, seed(), func(o *inventory.Options) {
		o.Clock = clock
		o.DeleteTicketTTL = time.Minute
	})

	ticket, err := ctrl.BeginDelete("Widget")
	require.NoError(t, err)
	advance(30 * time.Second)
	_, err = ctrl.ProceedDelete(ticket.ID)
	require.NoError(t, err)

	advance(31 * time.Second)
	err = ctrl.ConfirmDelete(context.Background(), ticket.ID, "ELIMINAR")
	require.ErrorIs(t, err, inventory.ErrTicketNotFound)
	require.Zero(t, svc.WriteCalls())
	require.Equal(t, 2, ctrl.Store().Count())
}

func TestControllerCustomConfirmationLiteral(t *testing.T) {
	t.Parallel()

	ctrl, _ := newController(t, seed(), func(o *inventory.Options) { o.ConfirmationLiteral = "BORRAR" })
	ticket, err := ctrl.BeginDelete("Gadget")
	require.NoError(t, err)
	_, err = ctrl.ProceedDelete(ticket.ID)
	require.NoError(t, err)

	require.Error(t, ctrl.ConfirmDelete(context.Background(), ticket.ID, "ELIMINAR"))
	require.NoError(t, ctrl.ConfirmDelete(context.Background(), ticket.ID, "borrar"))
}

func TestControllerSnapshot(t *testing.T) {
	t.Parallel()

	ctrl, _ := newController(t, seed())
	snap := ctrl.Snapshot(inventory.ViewState{Category: "missing", Sort: inventory.SortStockAsc})

	require.Equal(t, inventory.CategoryAll, snap.State.Category)
	require.Equal(t, []string{"Gadget", "Widget"}, []string{snap.Products[0].Title, snap.Products[1].Title})
	require.Equal(t, 2, snap.Stats.Total)
	require.Equal(t, 1, snap.Stats.LowCount)
	require.Len(t, snap.Categories, 1)
	require.False(t, snap.LimitReached)
}

func TestControllerPublishesEvents(t *testing.T) {
	t.Parallel()

	ctrl, _ := newController(t, seed())

	var (
		mu     sync.Mutex
		events []inventory.Event
	)
	unsubscribe, err := ctrl.Subscribe(func(ev inventory.Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})
	require.NoError(t, err)

	require.NoError(t, ctrl.AdjustStock(context.Background(), "Widget", 1, inventory.DirectionAdd))
	unsubscribe()
	require.NoError(t, ctrl.Refresh(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 1)
	require.Equal(t, inventory.EventStock, events[0].Kind)
	require.Equal(t, "Widget", events[0].BusinessKey)
	require.NotEmpty(t, events[0].ID)
	require.Equal(t, 2, events[0].Stats.Total)
}
