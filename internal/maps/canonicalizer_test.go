package maps

import (
	"context"
	"errors"
	"testing"

	"hllrotate/internal/gateway/command"
	"hllrotate/internal/pkg/text"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	entries []command.MapEntry
	err     error
	calls   int
}

func (s *stubCatalog) MapCatalog(ctx context.Context) ([]command.MapEntry, error) {
	s.calls++
	return s.entries, s.err
}

func TestResolveStaticAliases(t *testing.T) {
	c := NewCanonicalizer(nil)

	got := c.Resolve(context.Background(), []string{
		"stmariedumont_warfare",
		"St Marie Du Mont Warfare",
		"ST MARIE DU MONT WARFARE",
		"st-marie-du-mont warfare",
	}, nil)
	for _, id := range got {
		assert.Equal(t, "stmariedumont_warfare", id)
	}
}

func TestResolveNormalizationStable(t *testing.T) {
	// Any two spellings with the same normalized key resolve identically.
	c := NewCanonicalizer(nil)
	spellings := []string{"Foy Warfare", "foy_warfare", "FOY WARFARE", "foy  warfare"}
	for _, s := range spellings {
		require.Equal(t, text.NormalizeKey(spellings[0]), text.NormalizeKey(s))
	}
	got := c.Resolve(context.Background(), spellings, nil)
	for _, id := range got {
		assert.Equal(t, "foy_warfare", id)
	}
}

func TestResolveLiveSnapshotWins(t *testing.T) {
	c := NewCanonicalizer(nil)
	live := []command.MapEntry{
		{ID: "foy_offensive_ger", PrettyName: "Foy Warfare"},
	}
	// The live entry claims the "Foy Warfare" spelling; it beats the
	// static table's foy_warfare.
	got := c.Resolve(context.Background(), []string{"Foy Warfare"}, live)
	assert.Equal(t, []string{"foy_offensive_ger"}, got)
}

func TestResolveLearnsFromCatalogOnce(t *testing.T) {
	src := &stubCatalog{entries: []command.MapEntry{
		{ID: "mortain_offensiveus_overcast", MapName: "mortain", PrettyName: "Mortain Off. US Overcast"},
	}}
	c := NewCanonicalizer(src)

	got := c.Resolve(context.Background(), []string{"Mortain Off. US Overcast"}, nil)
	assert.Equal(t, []string{"mortain_offensiveus_overcast"}, got)

	c.Resolve(context.Background(), []string{"anything"}, nil)
	assert.Equal(t, 1, src.calls, "catalog is fetched at most once per process")

	assert.Equal(t, "Mortain Off. US Overcast", c.DisplayName("mortain_offensiveus_overcast"))
}

func TestResolveCatalogFailureDegrades(t *testing.T) {
	src := &stubCatalog{err: errors.New("offline")}
	c := NewCanonicalizer(src)

	got := c.Resolve(context.Background(), []string{"Carentan Warfare"}, nil)
	assert.Equal(t, []string{"carentan_warfare"}, got)
	assert.Equal(t, 1, src.calls)

	// The failed fetch is not retried.
	c.Resolve(context.Background(), []string{"Foy Warfare"}, nil)
	assert.Equal(t, 1, src.calls)
}

func TestResolveUnknownPassesThrough(t *testing.T) {
	c := NewCanonicalizer(nil)
	got := c.Resolve(context.Background(), []string{"totally_made_up_map", "", "  "}, nil)
	assert.Equal(t, []string{"totally_made_up_map", "", "  "}, got)
}

func TestResolveOneToOneWithInput(t *testing.T) {
	c := NewCanonicalizer(nil)
	in := []string{"foy_warfare", "unknown", "Carentan Warfare"}
	got := c.Resolve(context.Background(), in, nil)
	require.Len(t, got, len(in))
	assert.Equal(t, []string{"foy_warfare", "unknown", "carentan_warfare"}, got)
}

func TestDisplayNameFallback(t *testing.T) {
	c := NewCanonicalizer(nil)
	assert.Equal(t, "Foy Warfare", c.DisplayName("foy_warfare"))
	assert.Equal(t, "mystery_map", c.DisplayName("mystery_map"))
}
