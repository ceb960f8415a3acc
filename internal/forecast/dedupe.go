package forecast

import (
	"strings"
	"time"
	"unicode"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/shopspring/decimal"

	"github.com/runwaydev/runway/internal/model"
)

// DedupeConfig holds the fuzzy-duplicate thresholds. Exact deduplication
// by content hash is unconditional and not configurable.
type DedupeConfig struct {
	// MaxHourDelta is the widest date gap, in hours, between two
	// transactions that can still be considered near-duplicates.
	MaxHourDelta int
	// SimilarityThreshold is the minimum normalized description
	// similarity (0-1) for a near-duplicate pair.
	SimilarityThreshold float64
	// AmountTolerance is the largest absolute amount difference allowed.
	// Zero means amounts must match exactly.
	AmountTolerance decimal.Decimal
}

// DefaultDedupeConfig returns the stock thresholds: 72h window, 0.8
// similarity, exact amount match.
func DefaultDedupeConfig() DedupeConfig {
	return DedupeConfig{
		MaxHourDelta:        72,
		SimilarityThreshold: 0.8,
		AmountTolerance:     decimal.Zero,
	}
}

// ImportPartition splits an import batch into transactions not seen
// before and exact duplicates of already-known ones.
type ImportPartition struct {
	New        []model.Transaction
	Duplicates []model.Transaction
}

// PartitionKnown partitions batch by content-hash equality against the
// set of already-stored hashes. Re-importing a batch whose hashes are all
// known yields zero new transactions, which makes import idempotent.
// Hashes repeated within the batch itself are also folded into Duplicates.
func PartitionKnown(batch []model.Transaction, known map[string]struct{}) ImportPartition {
	var p ImportPartition
	seen := make(map[string]struct{}, len(batch))
	for _, t := range batch {
		if _, ok := known[t.Hash]; ok {
			p.Duplicates = append(p.Duplicates, t)
			continue
		}
		if _, ok := seen[t.Hash]; ok {
			p.Duplicates = append(p.Duplicates, t)
			continue
		}
		seen[t.Hash] = struct{}{}
		p.New = append(p.New, t)
	}
	return p
}

var descMetric = metrics.NewJaroWinkler()

// SimilarGroups finds near-duplicate transactions for operator review.
// Nothing is deleted automatically; each returned group holds two or more
// transactions an operator may choose to prune.
//
// The pass is greedy and deterministic: transactions are visited in slice
// order, each unprocessed transaction seeds a group, and every later
// unprocessed transaction similar to the seed joins that group and is
// marked processed. Groups are therefore a partition, not a clique
// closure — a transaction similar to two seeds lands with the earlier one.
func SimilarGroups(txns []model.Transaction, cfg DedupeConfig) [][]model.Transaction {
	var groups [][]model.Transaction
	processed := make([]bool, len(txns))

	for i := range txns {
		if processed[i] {
			continue
		}
		group := []model.Transaction{txns[i]}
		for j := i + 1; j < len(txns); j++ {
			if processed[j] {
				continue
			}
			if similar(txns[i], txns[j], cfg) {
				group = append(group, txns[j])
				processed[j] = true
			}
		}
		if len(group) > 1 {
			groups = append(groups, group)
		}
	}
	return groups
}

func similar(a, b model.Transaction, cfg DedupeConfig) bool {
	if a.Direction != b.Direction {
		return false
	}
	delta := a.Date.Sub(b.Date)
	if delta < 0 {
		delta = -delta
	}
	if delta > time.Duration(cfg.MaxHourDelta)*time.Hour {
		return false
	}
	if a.Amount.Sub(b.Amount).Abs().GreaterThan(cfg.AmountTolerance) {
		return false
	}
	sim := strutil.Similarity(normalizeDesc(a.Description), normalizeDesc(b.Description), descMetric)
	return sim >= cfg.SimilarityThreshold
}

// normalizeDesc lowercases and strips non-alphanumeric noise so that
// punctuation and reference numbers don't mask matching merchant names.
func normalizeDesc(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case !lastSpace && b.Len() > 0:
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}
