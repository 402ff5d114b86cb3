package dedupe

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/packgate/internal/quality/normalize"
)

// Ref points at one prompt inside one pack.
type Ref struct {
	PackID   string `json:"packId"`
	PromptID string `json:"promptId"`
}

func (r Ref) less(o Ref) bool {
	if r.PackID != o.PackID {
		return r.PackID < o.PackID
	}
	return r.PromptID < o.PromptID
}

// Sentence is the detector input: one prompt's identity plus raw text.
type Sentence struct {
	PackID   string
	PromptID string
	Text     string
}

// ExactCluster groups prompts whose normalized text is identical.
type ExactCluster struct {
	Canonical string `json:"canonical"`
	Refs      []Ref  `json:"refs"`
}

// NearPair is a prompt pair whose similarity meets the threshold but whose
// normalized texts differ. Pairs are emitted with A < B so results are
// independent of input order.
type NearPair struct {
	A     Ref     `json:"a"`
	B     Ref     `json:"b"`
	Score float64 `json:"score"`
}

// Result holds every duplicate found in one detector run, deterministically
// ordered.
type Result struct {
	Exact []ExactCluster `json:"exact,omitempty"`
	Near  []NearPair     `json:"near,omitempty"`
}

type item struct {
	ref       Ref
	canonical string
	tokens    []string
	set       map[string]struct{}
}

func buildItems(sentences []Sentence) []item {
	items := make([]item, len(sentences))
	for i, s := range sentences {
		tokens := normalize.Tokens(s.Text)
		set := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			set[tok] = struct{}{}
		}
		items[i] = item{
			ref:       Ref{PackID: s.PackID, PromptID: s.PromptID},
			canonical: strings.Join(tokens, " "),
			tokens:    tokens,
			set:       set,
		}
	}
	return items
}

// Find detects exact and near duplicates across the given sentences. The
// near threshold is inclusive. Symmetric: the same pairs come back for any
// input permutation.
func Find(sentences []Sentence, nearThreshold float64) Result {
	items := buildItems(sentences)
	res := Result{Exact: exactClusters(items)}
	res.Near = nearPairs(items, nearThreshold)
	return res
}

// FindParallel is Find with the expensive pairwise stage sharded across
// workers. Results are merged and re-sorted, so output is identical to the
// sequential run regardless of worker count.
func FindParallel(ctx context.Context, sentences []Sentence, nearThreshold float64, workers int) (Result, error) {
	items := buildItems(sentences)
	res := Result{Exact: exactClusters(items)}

	if workers < 1 {
		workers = 1
	}
	shards := make([][]NearPair, workers)
	g, _ := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			shards[w] = nearPairsShard(items, nearThreshold, w, workers)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	var merged []NearPair
	for _, shard := range shards {
		merged = append(merged, shard...)
	}
	sortNearPairs(merged)
	res.Near = merged
	return res, nil
}

func exactClusters(items []item) []ExactCluster {
	byCanonical := map[string][]Ref{}
	for _, it := range items {
		byCanonical[it.canonical] = append(byCanonical[it.canonical], it.ref)
	}
	var out []ExactCluster
	for canonical, refs := range byCanonical {
		if len(refs) < 2 {
			continue
		}
		sort.Slice(refs, func(i, j int) bool { return refs[i].less(refs[j]) })
		out = append(out, ExactCluster{Canonical: canonical, Refs: refs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Canonical < out[j].Canonical })
	return out
}

func nearPairs(items []item, threshold float64) []NearPair {
	pairs := nearPairsShard(items, threshold, 0, 1)
	sortNearPairs(pairs)
	return pairs
}

// nearPairsShard scans pairs (i, j), i < j, where i % workers == shard. The
// size prefilter is exact, not approximate: Jaccard is bounded by the ratio
// of the DISTINCT-token set sizes (intersection ≤ min, union ≥ max), so the
// combined score is bounded by 0.5*(min/max) + 0.5 and pairs whose set-size
// ratio falls below 2*threshold - 1 can never reach the threshold. Raw token
// counts would not give this bound: repeated words inflate them without
// changing the sets.
func nearPairsShard(items []item, threshold float64, shard, workers int) []NearPair {
	minRatio := 2*threshold - 1
	var out []NearPair
	for i := 0; i < len(items); i++ {
		if i%workers != shard {
			continue
		}
		for j := i + 1; j < len(items); j++ {
			a, b := items[i], items[j]
			if a.canonical == b.canonical {
				continue // already reported as an exact duplicate
			}
			la, lb := len(a.set), len(b.set)
			if la == 0 || lb == 0 {
				continue
			}
			lo, hi := la, lb
			if lo > hi {
				lo, hi = hi, lo
			}
			if float64(lo)/float64(hi) < minRatio {
				continue
			}
			score := Similarity(a, b)
			if score >= threshold {
				pa, pb := a.ref, b.ref
				if pb.less(pa) {
					pa, pb = pb, pa
				}
				out = append(out, NearPair{A: pa, B: pb, Score: score})
			}
		}
	}
	return out
}

func sortNearPairs(pairs []NearPair) {
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A.less(pairs[j].A)
		}
		return pairs[i].B.less(pairs[j].B)
	})
}

// Similarity combines token-set Jaccard overlap with normalized edit
// distance, both in [0, 1], weighted equally.
func Similarity(a, b item) float64 {
	return 0.5*jaccard(a.set, b.set) + 0.5*editSimilarity(a.canonical, b.canonical)
}

// Score computes the combined similarity of two raw texts. Exposed for the
// alternate-phrasing warning check.
func Score(textA, textB string) float64 {
	items := buildItems([]Sentence{{Text: textA}, {Text: textB}})
	return Similarity(items[0], items[1])
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func editSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	max := len(ra)
	if len(rb) > max {
		max = len(rb)
	}
	if max == 0 {
		return 1
	}
	return 1 - float64(levenshtein(ra, rb))/float64(max)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// ExactWithinPack filters exact clusters down to those entirely inside one
// pack; the gate layer treats these as hard failures.
func ExactWithinPack(res Result, packID string) []ExactCluster {
	var out []ExactCluster
	for _, c := range res.Exact {
		all := true
		for _, r := range c.Refs {
			if r.PackID != packID {
				all = false
				break
			}
		}
		if all {
			out = append(out, c)
		}
	}
	return out
}
