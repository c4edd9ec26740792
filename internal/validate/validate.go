// Package validate checks the universal invariants of spec §8 against a
// finished numbering run, rule by rule, the way the teacher's internal
// advisor package runs independent checks over profiling results and
// collects suggestions.
package validate

import (
	"fmt"

	"github.com/meshnum/internal/finalize"
	"github.com/meshnum/internal/mesh"
	"github.com/meshnum/internal/numbering"
)

// Level is a Finding's severity.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelFatal Level = "fatal"
)

// Finding is one invariant violation (or informational note) produced by a
// Rule.
type Finding struct {
	Rule    string
	Level   Level
	Message string
}

// Context carries everything a Rule needs to check one rank's finished run.
type Context struct {
	Me            int
	NumOwned      int32
	NumLocalNodes int32
	GlobalOffsets []int64
	Elements      []numbering.ElementState
	Result        finalize.Result
}

// RuleCheckFunc inspects ctx and reports any violations it finds.
type RuleCheckFunc func(ctx *Context) []Finding

// Rule is one independent, named invariant check.
type Rule struct {
	Name        string
	Description string
	Check       RuleCheckFunc
}

// Validator runs a set of Rules over a Context and collects Findings.
type Validator struct {
	rules []Rule
}

// NewValidator creates a Validator with the default §8 universal-invariant
// rules.
func NewValidator() *Validator {
	return &Validator{rules: defaultRules()}
}

// NewValidatorWithRules creates a Validator with a custom rule set, e.g. for
// testing a single invariant in isolation.
func NewValidatorWithRules(rules []Rule) *Validator {
	return &Validator{rules: rules}
}

// Validate runs every rule against ctx and returns all findings.
func (v *Validator) Validate(ctx *Context) []Finding {
	findings := make([]Finding, 0)
	for _, rule := range v.rules {
		if rule.Check == nil {
			continue
		}
		findings = append(findings, rule.Check(ctx)...)
	}
	return findings
}

func defaultRules() []Rule {
	return []Rule{
		{
			Name:        "slot_range",
			Description: "every populated element slot resolves to a valid local node index",
			Check:       checkSlotRange,
		},
		{
			Name:        "owned_global_id",
			Description: "the rank has a global offset entry and its finalized owned count matches the elected owned count",
			Check:       checkOwnedGlobalID,
		},
		{
			Name:        "nonlocal_range",
			Description: "every nonlocal node's global id falls within its owner's offset range",
			Check:       checkNonlocalRange,
		},
		{
			Name:        "nonlocal_monotonic",
			Description: "nonlocal_nodes is strictly increasing",
			Check:       checkNonlocalMonotonic,
		},
	}
}

func checkSlotRange(ctx *Context) []Finding {
	var findings []Finding
	total := ctx.NumLocalNodes
	for e, st := range ctx.Elements {
		for pos, n := range st.Slots {
			if n == mesh.SentinelNode {
				continue
			}
			if n < 0 || n >= total {
				findings = append(findings, Finding{
					Rule:  "slot_range",
					Level: LevelFatal,
					Message: fmt.Sprintf("element %d position %d resolves to out-of-range local index %d (num_local_nodes=%d)",
						e, pos, n, total),
				})
			}
		}
	}
	return findings
}

func checkOwnedGlobalID(ctx *Context) []Finding {
	if ctx.Me < 0 || ctx.Me >= len(ctx.GlobalOffsets) {
		return []Finding{{Rule: "owned_global_id", Level: LevelFatal, Message: "rank has no global offset entry"}}
	}
	if ctx.Result.NumOwned != ctx.NumOwned {
		return []Finding{{
			Rule:  "owned_global_id",
			Level: LevelFatal,
			Message: fmt.Sprintf("finalize result reports %d owned nodes but context expects %d", ctx.Result.NumOwned, ctx.NumOwned),
		}}
	}
	return nil
}

func checkNonlocalRange(ctx *Context) []Finding {
	var findings []Finding
	for i, global := range ctx.Result.NonLocalToGlobal {
		ownerFound := false
		for owner := 0; owner < len(ctx.GlobalOffsets); owner++ {
			lo := ctx.GlobalOffsets[owner]
			hi := int64(1<<62)
			if owner+1 < len(ctx.GlobalOffsets) {
				hi = ctx.GlobalOffsets[owner+1]
			}
			if global >= lo && global < hi {
				ownerFound = true
				break
			}
		}
		if !ownerFound {
			findings = append(findings, Finding{
				Rule:  "nonlocal_range",
				Level: LevelFatal,
				Message: fmt.Sprintf("nonlocal node %d has global id %d outside every owner's offset range", i, global),
			})
		}
	}
	return findings
}

func checkNonlocalMonotonic(ctx *Context) []Finding {
	var findings []Finding
	table := ctx.Result.NonLocalToGlobal
	for i := 1; i < len(table); i++ {
		if table[i] <= table[i-1] {
			findings = append(findings, Finding{
				Rule:  "nonlocal_monotonic",
				Level: LevelFatal,
				Message: fmt.Sprintf("nonlocal_nodes[%d]=%d is not strictly greater than nonlocal_nodes[%d]=%d", i, table[i], i-1, table[i-1]),
			})
		}
	}
	return findings
}

// CheckCrossRankAgreement checks the two invariants of §8 that are not
// observable from a single rank's Context: that owned ranges across ranks
// exactly tile [0, sum_ranks owned_count) with no overlap, and that every
// sharer record a rank holds for another rank is mirrored by that rank
// actually sharing back. It is the harness-level counterpart to Validator,
// run once after every simulated rank has finished (the equivalent of
// bringing all ranks' logs into one place after a distributed run).
func CheckCrossRankAgreement(ctxs []*Context) []Finding {
	var findings []Finding

	var sumOwned int64
	for rank, c := range ctxs {
		if int64(c.GlobalOffsets[rank]) != sumOwned {
			findings = append(findings, Finding{
				Rule:  "tiling",
				Level: LevelFatal,
				Message: fmt.Sprintf("rank %d's global offset %d does not continue the running tile at %d", rank, c.GlobalOffsets[rank], sumOwned),
			})
		}
		sumOwned += int64(c.NumOwned)
	}

	for rank, c := range ctxs {
		for peerRank, sharer := range c.Result.Sharers {
			if peerRank == finalize.LocalRankKey || peerRank == rank {
				continue
			}
			if peerRank < 0 || peerRank >= len(ctxs) {
				findings = append(findings, Finding{
					Rule:  "sharer_symmetry",
					Level: LevelFatal,
					Message: fmt.Sprintf("rank %d has a sharer record for nonexistent rank %d", rank, peerRank),
				})
				continue
			}
			if len(sharer.LocalIndices) > 0 {
				if _, ok := ctxs[peerRank].Result.Sharers[rank]; !ok {
					findings = append(findings, Finding{
						Rule:  "sharer_symmetry",
						Level: LevelWarn,
						Message: fmt.Sprintf("rank %d shares nodes with rank %d, but rank %d has no sharer record for rank %d", rank, peerRank, peerRank, rank),
					})
				}
			}
		}
	}

	return findings
}

// HasFatal reports whether any finding is fatal.
func HasFatal(findings []Finding) bool {
	for _, f := range findings {
		if f.Level == LevelFatal {
			return true
		}
	}
	return false
}
