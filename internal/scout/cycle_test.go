package scout

import (
	"context"
	"io"
	"strings"
	"testing"

	"resalescout/internal/extract"
	"resalescout/internal/oracle"
	"resalescout/internal/profit"
	pkgerrors "resalescout/pkg/errors"
	"resalescout/services/notify"
	"resalescout/services/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cycleMarkup = `
<html><body>
<li class="s-item">
  <div class="s-item__image-wrapper"><img src="https://img.example.com/lego.jpg"/></div>
  <a class="s-item__link" href="https://www.example.de/itm/100?hash=x">Lego Star Wars Set</a>
  <span class="s-item__title">Lego Star Wars Set</span>
  <span class="s-item__price">12,00 €</span>
</li>
<li class="s-item">
  <a class="s-item__link" href="https://www.example.de/itm/200">Gameboy Color</a>
  <span class="s-item__title">Gameboy Color</span>
  <span class="s-item__price">9,50 €</span>
</li>
</body></html>`

type stubSelector struct{ term string }

func (s *stubSelector) Next(context.Context) (string, error) { return s.term, nil }

type stubFetcher struct {
	markup string
	err    error
	calls  int
}

func (f *stubFetcher) Fetch(context.Context, string) (io.Reader, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return strings.NewReader(f.markup), nil
}

type stubOracle struct {
	estimates map[int]oracle.Estimate
	err       error
	calls     int
}

func (o *stubOracle) Estimate(context.Context, []extract.Listing) (map[int]oracle.Estimate, error) {
	o.calls++
	if o.err != nil {
		return nil, o.err
	}
	return o.estimates, nil
}

type recordingNotifier struct {
	sent []profit.Decision
	err  error
}

func (n *recordingNotifier) Name() string { return "recording" }

func (n *recordingNotifier) Notify(_ context.Context, decision profit.Decision) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, decision)
	return nil
}

func newTestCycle(f *stubFetcher, o *stubOracle, n *recordingNotifier, mem *store.MemoryStore) *Cycle {
	return New(
		Config{
			FeeRate:             0.15,
			MinProfit:           5.0,
			ConfidenceThreshold: 80,
			OracleConfigured:    true,
		},
		Collaborators{
			Selector:  &stubSelector{term: "lego"},
			Fetcher:   f,
			Extractor: extract.New(extract.Options{MaxPrice: 15.0, MaxCount: 10}),
			Oracle:    o,
			History:   mem,
			Stats:     mem,
			Notifiers: []notify.Notifier{n},
		},
	)
}

func TestCycleEndToEnd(t *testing.T) {
	f := &stubFetcher{markup: cycleMarkup}
	o := &stubOracle{estimates: map[int]oracle.Estimate{
		1: {ID: 1, ResalePrice: 35.0, Reasoning: "Retired set, sells fast", Confidence: 90},
	}}
	n := &recordingNotifier{}
	mem := store.NewMemoryStore(100)

	summary, err := newTestCycle(f, o, n, mem).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "lego", summary.Term)
	assert.Equal(t, 2, summary.Found)
	assert.Equal(t, 1, summary.Estimated)
	assert.Equal(t, 1, summary.Actionable)
	assert.Equal(t, 1, summary.Alerted)
	assert.Equal(t, 0, summary.SkippedKnown)

	require.Len(t, n.sent, 1)
	decision := n.sent[0]
	assert.Equal(t, "Lego Star Wars Set", decision.Listing.Title)
	assert.Equal(t, 12.0, decision.Listing.Price)
	assert.Equal(t, 35.0, decision.ResaleEstimate)
	assert.Equal(t, 5.25, decision.Fees)
	assert.Equal(t, 17.75, decision.NetProfit)

	known, err := mem.Contains(context.Background(), "https://www.example.de/itm/100")
	require.NoError(t, err)
	assert.True(t, known, "alerted identifier should be recorded with query stripped")

	stats, err := mem.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats["lego"].Checked)
	assert.Equal(t, 1, stats["lego"].Hits)
}

func TestCycleSuppressesKnownIdentifiers(t *testing.T) {
	f := &stubFetcher{markup: cycleMarkup}
	o := &stubOracle{estimates: map[int]oracle.Estimate{
		1: {ID: 1, ResalePrice: 35.0, Confidence: 90},
	}}
	n := &recordingNotifier{}
	mem := store.NewMemoryStore(100)
	cycle := newTestCycle(f, o, n, mem)

	_, err := cycle.Run(context.Background())
	require.NoError(t, err)
	summary, err := cycle.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Actionable)
	assert.Equal(t, 0, summary.Alerted)
	assert.Equal(t, 1, summary.SkippedKnown)
	assert.Len(t, n.sent, 1, "second cycle must not re-alert the same listing")
}

func TestCycleConfidenceGate(t *testing.T) {
	f := &stubFetcher{markup: cycleMarkup}
	o := &stubOracle{estimates: map[int]oracle.Estimate{
		1: {ID: 1, ResalePrice: 35.0, Confidence: 60},
	}}
	n := &recordingNotifier{}

	summary, err := newTestCycle(f, o, n, store.NewMemoryStore(100)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Actionable)
	assert.Empty(t, n.sent)
}

func TestCycleWithoutOracleCredential(t *testing.T) {
	f := &stubFetcher{markup: cycleMarkup}
	o := &stubOracle{}
	cycle := newTestCycle(f, o, &recordingNotifier{}, store.NewMemoryStore(100))
	cycle.cfg.OracleConfigured = false

	summary, err := cycle.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Summary{}, summary)
	assert.Zero(t, f.calls, "no fetch without the oracle credential")
	assert.Zero(t, o.calls)
}

func TestCycleFetchFailureAbortsTerm(t *testing.T) {
	f := &stubFetcher{err: pkgerrors.NewValidation("fetch", "term on cooldown")}
	o := &stubOracle{}
	n := &recordingNotifier{}

	_, err := newTestCycle(f, o, n, store.NewMemoryStore(100)).Run(context.Background())
	require.Error(t, err)

	assert.Equal(t, 1, f.calls, "permanent fetch error must not retry")
	assert.Zero(t, o.calls)
	assert.Empty(t, n.sent)
}

func TestCycleEstimateFailureStillCountsChecked(t *testing.T) {
	f := &stubFetcher{markup: cycleMarkup}
	o := &stubOracle{err: pkgerrors.NewOracle("estimate", "response carried no JSON array", nil)}
	n := &recordingNotifier{}
	mem := store.NewMemoryStore(100)

	_, err := newTestCycle(f, o, n, mem).Run(context.Background())
	require.Error(t, err)

	assert.Equal(t, 1, o.calls, "permanent oracle error must not retry")
	assert.Empty(t, n.sent)

	stats, statsErr := mem.Stats(context.Background())
	require.NoError(t, statsErr)
	assert.Equal(t, 2, stats["lego"].Checked)
	assert.Zero(t, stats["lego"].Hits)
}

func TestCycleNotifierFailureStillRecordsHistory(t *testing.T) {
	f := &stubFetcher{markup: cycleMarkup}
	o := &stubOracle{estimates: map[int]oracle.Estimate{
		1: {ID: 1, ResalePrice: 35.0, Confidence: 90},
	}}
	n := &recordingNotifier{err: pkgerrors.NewNotify("discord", "webhook returned 400", nil)}
	mem := store.NewMemoryStore(100)

	summary, err := newTestCycle(f, o, n, mem).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Alerted)

	known, err := mem.Contains(context.Background(), "https://www.example.de/itm/100")
	require.NoError(t, err)
	assert.True(t, known, "identifier is recorded even when the sink fails")
}
