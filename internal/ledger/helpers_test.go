package ledger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billsplitter/internal/models"
	"github.com/mmynk/billsplitter/internal/storage/sqlite"
	"github.com/mmynk/billsplitter/internal/token"
)

var (
	owner = models.MustAddress("0x00000000000000000000000000000000000000aa")
	alice = models.MustAddress("0x00000000000000000000000000000000000000a1")
	bob   = models.MustAddress("0x00000000000000000000000000000000000000b2")
	carol = models.MustAddress("0x00000000000000000000000000000000000000c3")
)

// units converts whole tokens to 6-decimal smallest units.
func units(n uint64) *uint256.Int {
	return uint256.NewInt(n * 1_000000)
}

type fixture struct {
	store *sqlite.SQLiteStore
	bank  *token.Bank
	usdt  *token.ERC20
	usdc  *token.ERC20
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	bank := token.NewBank(store)
	usdt, err := bank.Deploy(ctx, token.Meta{Name: "Tether USD", Symbol: "USDT", Decimals: 6})
	require.NoError(t, err)
	usdc, err := bank.Deploy(ctx, token.Meta{Name: "USD Coin", Symbol: "USDC", Decimals: 6})
	require.NoError(t, err)

	for _, account := range []models.Address{alice, bob, carol} {
		require.NoError(t, usdt.Mint(ctx, account, units(1000)))
		require.NoError(t, usdc.Mint(ctx, account, units(1000)))
	}

	return &fixture{
		store: store,
		bank:  bank,
		usdt:  usdt,
		usdc:  usdc,
		clock: time.Unix(1_700_000_000, 0),
	}
}

func (f *fixture) options() Options {
	return Options{
		Owner:       owner,
		PlatformFee: DefaultPlatformFee,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:         func() time.Time { return f.clock },
		GuardWait:   100 * time.Millisecond,
	}
}

func (f *fixture) splitter(t *testing.T, tok token.Token) *Splitter {
	t.Helper()
	s, err := NewSplitter(context.Background(), f.store, tok, f.options())
	require.NoError(t, err)
	return s
}

func (f *fixture) splitterV2(t *testing.T, tokens token.Registry) *SplitterV2 {
	t.Helper()
	if tokens == nil {
		tokens = f.bank
	}
	s, err := NewSplitterV2(context.Background(), f.store, tokens, f.options())
	require.NoError(t, err)
	return s
}

func (f *fixture) approve(t *testing.T, tok *token.ERC20, from, spender models.Address, amount *uint256.Int) {
	t.Helper()
	require.NoError(t, tok.Approve(context.Background(), from, spender, amount))
}

func balance(t *testing.T, tok token.Token, account models.Address) *uint256.Int {
	t.Helper()
	b, err := tok.BalanceOf(context.Background(), account)
	require.NoError(t, err)
	return b
}

type eventLister interface {
	Events(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
}

func eventKinds(t *testing.T, l eventLister, id models.BillID) []models.EventKind {
	t.Helper()
	events, err := l.Events(context.Background(), models.EventFilter{BillID: id})
	require.NoError(t, err)
	kinds := make([]models.EventKind, 0, len(events))
	for _, e := range events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

// hookToken runs a hook before every TransferFrom. Used to simulate a token
// that calls back into the ledger mid-transfer.
type hookToken struct {
	*token.ERC20
	beforeTransferFrom func(ctx context.Context) error
}

func (h *hookToken) TransferFrom(ctx context.Context, spender, from, to models.Address, amount *uint256.Int) error {
	if h.beforeTransferFrom != nil {
		if err := h.beforeTransferFrom(ctx); err != nil {
			return err
		}
	}
	return h.ERC20.TransferFrom(ctx, spender, from, to, amount)
}

// pausedToken fails every Transfer but lets TransferFrom through.
type pausedToken struct {
	*token.ERC20
}

var errPaused = errors.New("token paused")

func (p *pausedToken) Transfer(context.Context, models.Address, models.Address, *uint256.Int) error {
	return errPaused
}

// staticRegistry resolves a fixed set of tokens.
type staticRegistry map[models.Address]token.Token

func (r staticRegistry) Lookup(_ context.Context, addr models.Address) (token.Token, error) {
	if tok, ok := r[addr]; ok {
		return tok, nil
	}
	return nil, token.ErrUnknownToken
}

// callbackPublisher runs fn once, on the first publish.
type callbackPublisher struct {
	fn func()
}

func (p *callbackPublisher) Publish(context.Context, []models.Event) {
	if fn := p.fn; fn != nil {
		p.fn = nil
		fn()
	}
}
