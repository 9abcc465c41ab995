package ledger

import (
	"context"
	"testing"
	"time"

	"ledger-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupLedgerTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Holding{}, &domain.CostBasisLot{}, &domain.InvestmentTransaction{},
	))
	return &Service{DB: db}, db
}

func newHolding(t *testing.T, db *gorm.DB) *domain.Holding {
	h := &domain.Holding{
		AccountID: uuid.New(),
		Ticker:    "VTI",
		Name:      "Vanguard Total Stock Market ETF",
	}
	require.NoError(t, db.Create(h).Error)
	return h
}

func day(n int) time.Time {
	return time.Date(2024, 3, n, 0, 0, 0, 0, time.UTC)
}

func mustCreate(t *testing.T, svc *Service, in CreateTransactionInput) *domain.InvestmentTransaction {
	rec, err := svc.CreateTransaction(context.Background(), in)
	require.NoError(t, err)
	return rec
}

func fetchHolding(t *testing.T, db *gorm.DB, id uuid.UUID) domain.Holding {
	var h domain.Holding
	require.NoError(t, db.Where("holding_id = ?", id).First(&h).Error)
	return h
}

func fetchLot(t *testing.T, db *gorm.DB, id uuid.UUID) domain.CostBasisLot {
	var l domain.CostBasisLot
	require.NoError(t, db.Where("lot_id = ?", id).First(&l).Error)
	return l
}

// assertAggregateInvariant checks shares_owned == sum of remaining shares
// and avg cost == shares-weighted average of lot costs.
func assertAggregateInvariant(t *testing.T, db *gorm.DB, holdingID uuid.UUID) {
	t.Helper()
	h := fetchHolding(t, db, holdingID)
	var lots []domain.CostBasisLot
	require.NoError(t, db.Where("holding_id = ?", holdingID).Find(&lots).Error)

	var total, weighted int64
	for _, lot := range lots {
		require.GreaterOrEqual(t, lot.RemainingShares, int64(0))
		require.LessOrEqual(t, lot.RemainingShares, lot.Shares)
		total += lot.RemainingShares
		weighted += lot.RemainingShares * lot.CostPerShare
	}
	assert.Equal(t, total, h.SharesOwned, "shares_owned must equal sum of lot remainders")
	if total == 0 {
		assert.Zero(t, h.AvgCostPerShare)
	} else {
		want := (weighted + total/2) / total
		assert.Equal(t, want, h.AvgCostPerShare)
	}
}

func TestCreateBuy_CreatesLotAndAggregate(t *testing.T) {
	svc, db := setupLedgerTest(t)
	h := newHolding(t, db)

	rec := mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxBuy, Date: day(1),
		Shares: 100000, PricePerShare: 10000, // 10 shares @ $100.00
	})
	require.NotNil(t, rec.LotID)
	assert.Equal(t, int64(100000), rec.TotalAmount) // 10 x $100.00 in cents

	lot := fetchLot(t, db, *rec.LotID)
	assert.Equal(t, int64(100000), lot.Shares)
	assert.Equal(t, int64(100000), lot.RemainingShares)
	assert.Equal(t, int64(10000), lot.CostPerShare)
	assert.True(t, lot.PurchaseDate.Equal(day(1)))

	got := fetchHolding(t, db, h.HoldingID)
	assert.Equal(t, int64(100000), got.SharesOwned)
	assert.Equal(t, int64(10000), got.AvgCostPerShare)
	assertAggregateInvariant(t, db, h.HoldingID)
}

func TestCreateBuy_HoldingNotFound(t *testing.T) {
	svc, _ := setupLedgerTest(t)
	_, err := svc.CreateTransaction(context.Background(), CreateTransactionInput{
		HoldingID: uuid.New(), Type: domain.TxBuy, Date: day(1),
		Shares: 10000, PricePerShare: 100,
	})
	assert.Equal(t, ErrHoldingNotFound, err)
}

func TestCreateTransaction_InvalidType(t *testing.T) {
	svc, db := setupLedgerTest(t)
	h := newHolding(t, db)
	_, err := svc.CreateTransaction(context.Background(), CreateTransactionInput{
		HoldingID: h.HoldingID, Type: "short_sale", Date: day(1), Shares: 10000,
	})
	assert.Equal(t, ErrInvalidTransactionType, err)
}

func TestCreateTransaction_NonPositiveShares(t *testing.T) {
	svc, db := setupLedgerTest(t)
	h := newHolding(t, db)
	for _, typ := range []domain.TransactionType{domain.TxBuy, domain.TxSell, domain.TxDrip} {
		_, err := svc.CreateTransaction(context.Background(), CreateTransactionInput{
			HoldingID: h.HoldingID, Type: typ, Date: day(1), Shares: 0, PricePerShare: 100,
		})
		assert.Equal(t, ErrInvalidShares, err, string(typ))
	}
}

// Spec scenario: buy 10 @ $100 (day 1), buy 5 @ $120 (day 10), sell 12
// (day 20) -> lot A empty, lot B keeps 3, avg cost $120.00.
func TestSell_FIFOAcrossLots(t *testing.T) {
	svc, db := setupLedgerTest(t)
	h := newHolding(t, db)

	buyA := mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxBuy, Date: day(1),
		Shares: 100000, PricePerShare: 10000,
	})
	buyB := mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxBuy, Date: day(10),
		Shares: 50000, PricePerShare: 12000,
	})

	sell := mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxSell, Date: day(20),
		Shares: 120000, PricePerShare: 13000,
	})
	assert.Equal(t, int64(-120000), sell.Shares)
	assert.Nil(t, sell.LotID)
	require.NotEmpty(t, sell.SellDetail)

	lotA := fetchLot(t, db, *buyA.LotID)
	lotB := fetchLot(t, db, *buyB.LotID)
	assert.Equal(t, int64(0), lotA.RemainingShares)
	assert.Equal(t, int64(30000), lotB.RemainingShares)

	got := fetchHolding(t, db, h.HoldingID)
	assert.Equal(t, int64(30000), got.SharesOwned)
	assert.Equal(t, int64(12000), got.AvgCostPerShare)
	assertAggregateInvariant(t, db, h.HoldingID)
}

// FIFO order is by purchase date, not creation order: a lot bought earlier
// but recorded later still depletes first.
func TestSell_FIFOByPurchaseDate(t *testing.T) {
	svc, db := setupLedgerTest(t)
	h := newHolding(t, db)

	late := mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxBuy, Date: day(15),
		Shares: 50000, PricePerShare: 20000,
	})
	early := mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxBuy, Date: day(2),
		Shares: 50000, PricePerShare: 10000,
	})

	mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxSell, Date: day(20),
		Shares: 20000, PricePerShare: 25000,
	})

	assert.Equal(t, int64(30000), fetchLot(t, db, *early.LotID).RemainingShares)
	assert.Equal(t, int64(50000), fetchLot(t, db, *late.LotID).RemainingShares)
	assertAggregateInvariant(t, db, h.HoldingID)
}

func TestSell_InsufficientSharesRejected(t *testing.T) {
	svc, db := setupLedgerTest(t)
	h := newHolding(t, db)

	buy := mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxBuy, Date: day(1),
		Shares: 50000, PricePerShare: 10000,
	})

	_, err := svc.CreateTransaction(context.Background(), CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxSell, Date: day(2),
		Shares: 50001, PricePerShare: 10000,
	})
	assert.Equal(t, ErrInsufficientShares, err)

	// nothing was touched: no lot went below its remainder, no row written
	assert.Equal(t, int64(50000), fetchLot(t, db, *buy.LotID).RemainingShares)
	var count int64
	db.Model(&domain.InvestmentTransaction{}).Where("type = ?", domain.TxSell).Count(&count)
	assert.Zero(t, count)
	assertAggregateInvariant(t, db, h.HoldingID)
}

// When the caller leaves total_amount zero it defaults to shares x price,
// plus fees on acquisitions and minus fees on sells.
func TestCreateTransaction_TotalAmountDefaultsWithFees(t *testing.T) {
	svc, db := setupLedgerTest(t)
	h := newHolding(t, db)

	buy := mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxBuy, Date: day(1),
		Shares: 100000, PricePerShare: 10000, Fees: 500, // 10 @ $100.00 + $5.00
	})
	assert.Equal(t, int64(100500), buy.TotalAmount)

	sell := mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxSell, Date: day(2),
		Shares: 40000, PricePerShare: 11000, Fees: 500, // 4 @ $110.00 - $5.00
	})
	assert.Equal(t, int64(43500), sell.TotalAmount)

	// an explicit amount is stored verbatim, fees notwithstanding
	explicit := mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxSell, Date: day(3),
		Shares: 10000, PricePerShare: 11000, Fees: 500, TotalAmount: 12345,
	})
	assert.Equal(t, int64(12345), explicit.TotalAmount)
}

func TestDividend_NoLotMutation(t *testing.T) {
	svc, db := setupLedgerTest(t)
	h := newHolding(t, db)

	mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxBuy, Date: day(1),
		Shares: 100000, PricePerShare: 10000,
	})
	before := fetchHolding(t, db, h.HoldingID)

	div := mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxDividend, Date: day(5),
		TotalAmount: 2500, // $25.00 cash
	})
	assert.Nil(t, div.LotID)
	assert.Equal(t, int64(2500), div.TotalAmount)

	after := fetchHolding(t, db, h.HoldingID)
	assert.Equal(t, before.SharesOwned, after.SharesOwned)
	assert.Equal(t, before.AvgCostPerShare, after.AvgCostPerShare)

	var lots int64
	db.Model(&domain.CostBasisLot{}).Where("holding_id = ?", h.HoldingID).Count(&lots)
	assert.Equal(t, int64(1), lots)
}

func TestDrip_CreatesLotLikeBuy(t *testing.T) {
	svc, db := setupLedgerTest(t)
	h := newHolding(t, db)

	drip := mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxDrip, Date: day(3),
		Shares: 12500, PricePerShare: 8000, // 1.25 shares @ $80.00
	})
	require.NotNil(t, drip.LotID)

	lot := fetchLot(t, db, *drip.LotID)
	assert.Equal(t, int64(12500), lot.Shares)
	assert.Equal(t, int64(12500), lot.RemainingShares)
	assert.Equal(t, int64(8000), lot.CostPerShare)
	assertAggregateInvariant(t, db, h.HoldingID)
}

// Spec scenario: 100 shares @ $10.00 through a 1:2 split -> 200 shares @ $5.00.
func TestSplit_OneToTwo(t *testing.T) {
	svc, db := setupLedgerTest(t)
	h := newHolding(t, db)

	buy := mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxBuy, Date: day(1),
		Shares: 1000000, PricePerShare: 1000,
	})

	split := mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxStockSplit, Date: day(10),
		SplitRatio: "1:2",
	})
	require.NotNil(t, split.SplitRatio)
	assert.Equal(t, "1:2", *split.SplitRatio)

	lot := fetchLot(t, db, *buy.LotID)
	assert.Equal(t, int64(2000000), lot.Shares)
	assert.Equal(t, int64(2000000), lot.RemainingShares)
	assert.Equal(t, int64(500), lot.CostPerShare)

	got := fetchHolding(t, db, h.HoldingID)
	assert.Equal(t, int64(2000000), got.SharesOwned)
	assert.Equal(t, int64(500), got.AvgCostPerShare)
	assertAggregateInvariant(t, db, h.HoldingID)
}

func TestSplit_PreservesBasisUpToRounding(t *testing.T) {
	svc, db := setupLedgerTest(t)
	h := newHolding(t, db)

	mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxBuy, Date: day(1),
		Shares: 100000, PricePerShare: 999, // odd cost, rounds on rescale
	})
	mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxBuy, Date: day(2),
		Shares: 70000, PricePerShare: 1333,
	})

	basis := func() int64 {
		var lots []domain.CostBasisLot
		require.NoError(t, db.Where("holding_id = ?", h.HoldingID).Find(&lots).Error)
		var sum int64
		for _, l := range lots {
			sum += l.RemainingShares * l.CostPerShare
		}
		return sum
	}
	before := basis()

	mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxStockSplit, Date: day(5),
		SplitRatio: "1:2",
	})

	after := basis()
	// each lot's cost moves by at most half a cent per post-split share
	var lots []domain.CostBasisLot
	require.NoError(t, db.Where("holding_id = ?", h.HoldingID).Find(&lots).Error)
	var bound int64
	for _, l := range lots {
		bound += l.RemainingShares / 2
	}
	diff := after - before
	if diff < 0 {
		diff = -diff
	}
	assert.LessOrEqual(t, diff, bound)
	assertAggregateInvariant(t, db, h.HoldingID)
}

func TestSplit_InvalidRatioRejected(t *testing.T) {
	svc, db := setupLedgerTest(t)
	h := newHolding(t, db)
	mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxBuy, Date: day(1),
		Shares: 10000, PricePerShare: 1000,
	})

	for _, ratio := range []string{"", "1", "0:2", "2:0", "-1:2", "a:b", "1:2:3"} {
		_, err := svc.CreateTransaction(context.Background(), CreateTransactionInput{
			HoldingID: h.HoldingID, Type: domain.TxStockSplit, Date: day(2),
			SplitRatio: ratio,
		})
		assert.Equal(t, ErrInvalidSplitRatio, err, "ratio %q", ratio)
	}
	// lots untouched
	var lot domain.CostBasisLot
	require.NoError(t, db.Where("holding_id = ?", h.HoldingID).First(&lot).Error)
	assert.Equal(t, int64(10000), lot.RemainingShares)
	assert.Equal(t, int64(1000), lot.CostPerShare)
}

// Deleting a buy must restore the holding's aggregates bit-for-bit.
func TestDeleteBuy_ExactReversal(t *testing.T) {
	svc, db := setupLedgerTest(t)
	h := newHolding(t, db)

	mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxBuy, Date: day(1),
		Shares: 33333, PricePerShare: 997,
	})
	before := fetchHolding(t, db, h.HoldingID)

	buy2 := mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxBuy, Date: day(2),
		Shares: 77777, PricePerShare: 1201,
	})

	deleted, err := svc.DeleteTransaction(context.Background(), buy2.TxID)
	require.NoError(t, err)
	assert.True(t, deleted)

	after := fetchHolding(t, db, h.HoldingID)
	assert.Equal(t, before.SharesOwned, after.SharesOwned)
	assert.Equal(t, before.AvgCostPerShare, after.AvgCostPerShare)

	var lotCount int64
	db.Model(&domain.CostBasisLot{}).Where("holding_id = ?", h.HoldingID).Count(&lotCount)
	assert.Equal(t, int64(1), lotCount)
	assertAggregateInvariant(t, db, h.HoldingID)
}

// Deleting a sell restores the exact lots it depleted, keeping their
// original purchase dates and costs.
func TestDeleteSell_RestoresDepletedLots(t *testing.T) {
	svc, db := setupLedgerTest(t)
	h := newHolding(t, db)

	buyA := mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxBuy, Date: day(1),
		Shares: 100000, PricePerShare: 10000,
	})
	buyB := mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxBuy, Date: day(10),
		Shares: 50000, PricePerShare: 12000,
	})
	beforeH := fetchHolding(t, db, h.HoldingID)

	sell := mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxSell, Date: day(20),
		Shares: 120000, PricePerShare: 13000,
	})

	deleted, err := svc.DeleteTransaction(context.Background(), sell.TxID)
	require.NoError(t, err)
	assert.True(t, deleted)

	lotA := fetchLot(t, db, *buyA.LotID)
	lotB := fetchLot(t, db, *buyB.LotID)
	assert.Equal(t, int64(100000), lotA.RemainingShares)
	assert.Equal(t, int64(50000), lotB.RemainingShares)
	assert.True(t, lotA.PurchaseDate.Equal(day(1)))
	assert.True(t, lotB.PurchaseDate.Equal(day(10)))

	afterH := fetchHolding(t, db, h.HoldingID)
	assert.Equal(t, beforeH.SharesOwned, afterH.SharesOwned)
	assert.Equal(t, beforeH.AvgCostPerShare, afterH.AvgCostPerShare)
	assertAggregateInvariant(t, db, h.HoldingID)
}

// Reversing a buy whose lot row is gone fails instead of silently
// succeeding; the transaction row survives.
func TestDeleteBuy_LotGoneFails(t *testing.T) {
	svc, db := setupLedgerTest(t)
	h := newHolding(t, db)

	buy := mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxBuy, Date: day(1),
		Shares: 100000, PricePerShare: 10000,
	})
	require.NoError(t, db.Where("lot_id = ?", *buy.LotID).Delete(&domain.CostBasisLot{}).Error)

	deleted, err := svc.DeleteTransaction(context.Background(), buy.TxID)
	assert.Equal(t, ErrLotNotFound, err)
	assert.False(t, deleted)

	var txCount int64
	db.Model(&domain.InvestmentTransaction{}).Where("tx_id = ?", buy.TxID).Count(&txCount)
	assert.Equal(t, int64(1), txCount, "failed reversal must keep the transaction row")
}

// Reversing a sell whose snapshot references a removed lot fails as one
// atomic unit: lots restored earlier in the replay are rolled back and the
// sell row stays.
func TestDeleteSell_SnapshotLotGoneRollsBack(t *testing.T) {
	svc, db := setupLedgerTest(t)
	h := newHolding(t, db)

	buyA := mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxBuy, Date: day(1),
		Shares: 100000, PricePerShare: 10000,
	})
	buyB := mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxBuy, Date: day(10),
		Shares: 50000, PricePerShare: 12000,
	})

	// sell spans both lots: snapshot deducts A fully, then part of B
	sell := mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxSell, Date: day(20),
		Shares: 120000, PricePerShare: 13000,
	})

	// remove lot B out from under the snapshot
	require.NoError(t, db.Where("lot_id = ?", *buyB.LotID).Delete(&domain.CostBasisLot{}).Error)
	beforeH := fetchHolding(t, db, h.HoldingID)

	deleted, err := svc.DeleteTransaction(context.Background(), sell.TxID)
	assert.Equal(t, ErrLotNotFound, err)
	assert.False(t, deleted)

	// lot A's restore was rolled back together with the failure on B
	assert.Equal(t, int64(0), fetchLot(t, db, *buyA.LotID).RemainingShares)

	var txCount int64
	db.Model(&domain.InvestmentTransaction{}).Where("tx_id = ?", sell.TxID).Count(&txCount)
	assert.Equal(t, int64(1), txCount)

	afterH := fetchHolding(t, db, h.HoldingID)
	assert.Equal(t, beforeH.SharesOwned, afterH.SharesOwned)
	assert.Equal(t, beforeH.AvgCostPerShare, afterH.AvgCostPerShare)
}

func TestDeleteSplit_InverseRescale(t *testing.T) {
	svc, db := setupLedgerTest(t)
	h := newHolding(t, db)

	buy := mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxBuy, Date: day(1),
		Shares: 1000000, PricePerShare: 1000,
	})
	split := mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxStockSplit, Date: day(5),
		SplitRatio: "1:2",
	})

	deleted, err := svc.DeleteTransaction(context.Background(), split.TxID)
	require.NoError(t, err)
	assert.True(t, deleted)

	lot := fetchLot(t, db, *buy.LotID)
	assert.Equal(t, int64(1000000), lot.Shares)
	assert.Equal(t, int64(1000000), lot.RemainingShares)
	assert.Equal(t, int64(1000), lot.CostPerShare)
	assertAggregateInvariant(t, db, h.HoldingID)
}

func TestDeleteDividend_Noop(t *testing.T) {
	svc, db := setupLedgerTest(t)
	h := newHolding(t, db)

	mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxBuy, Date: day(1),
		Shares: 100000, PricePerShare: 10000,
	})
	div := mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxDividend, Date: day(2),
		TotalAmount: 1500,
	})
	before := fetchHolding(t, db, h.HoldingID)

	deleted, err := svc.DeleteTransaction(context.Background(), div.TxID)
	require.NoError(t, err)
	assert.True(t, deleted)

	after := fetchHolding(t, db, h.HoldingID)
	assert.Equal(t, before.SharesOwned, after.SharesOwned)
	assert.Equal(t, before.AvgCostPerShare, after.AvgCostPerShare)
}

func TestDeleteTransaction_NotFoundReturnsFalse(t *testing.T) {
	svc, _ := setupLedgerTest(t)
	deleted, err := svc.DeleteTransaction(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRecalculateHolding_Idempotent(t *testing.T) {
	svc, db := setupLedgerTest(t)
	h := newHolding(t, db)

	mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxBuy, Date: day(1),
		Shares: 33333, PricePerShare: 997,
	})
	mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxBuy, Date: day(2),
		Shares: 10001, PricePerShare: 1511,
	})

	require.NoError(t, svc.RecalculateHolding(context.Background(), h.HoldingID))
	first := fetchHolding(t, db, h.HoldingID)
	require.NoError(t, svc.RecalculateHolding(context.Background(), h.HoldingID))
	second := fetchHolding(t, db, h.HoldingID)

	assert.Equal(t, first.SharesOwned, second.SharesOwned)
	assert.Equal(t, first.AvgCostPerShare, second.AvgCostPerShare)
	assertAggregateInvariant(t, db, h.HoldingID)
}

func TestRecalculateHolding_ZeroSharesZeroCost(t *testing.T) {
	svc, db := setupLedgerTest(t)
	h := newHolding(t, db)

	mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxBuy, Date: day(1),
		Shares: 40000, PricePerShare: 5000,
	})
	mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxSell, Date: day(2),
		Shares: 40000, PricePerShare: 5200,
	})

	got := fetchHolding(t, db, h.HoldingID)
	assert.Zero(t, got.SharesOwned)
	assert.Zero(t, got.AvgCostPerShare, "avg cost is forced to 0 with no shares, never NaN-like leftovers")
}

func TestRecalculateHolding_NotFound(t *testing.T) {
	svc, _ := setupLedgerTest(t)
	err := svc.RecalculateHolding(context.Background(), uuid.New())
	assert.Equal(t, ErrHoldingNotFound, err)
}

func TestListLots_FIFOOrder(t *testing.T) {
	svc, db := setupLedgerTest(t)
	h := newHolding(t, db)

	mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxBuy, Date: day(20),
		Shares: 10000, PricePerShare: 100,
	})
	mustCreate(t, svc, CreateTransactionInput{
		HoldingID: h.HoldingID, Type: domain.TxBuy, Date: day(5),
		Shares: 10000, PricePerShare: 100,
	})

	lots, err := svc.ListLots(context.Background(), h.HoldingID)
	require.NoError(t, err)
	require.Len(t, lots, 2)
	assert.True(t, lots[0].PurchaseDate.Before(lots[1].PurchaseDate))
}

func TestGetTransaction_NotFound(t *testing.T) {
	svc, _ := setupLedgerTest(t)
	_, err := svc.GetTransaction(context.Background(), uuid.New())
	assert.Equal(t, ErrTransactionNotFound, err)
}
