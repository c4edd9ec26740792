package cmd

import (
	"fmt"
	"sort"

	"github.com/meshnum/internal/mesh"
	"github.com/meshnum/internal/testutil"
)

// scenarios maps a --scenario name to the per-rank forest handles of one of
// spec §8's concrete scenarios.
var scenarios = map[string]func() []mesh.ForestHandle{
	"single": func() []mesh.ForestHandle {
		return []mesh.ForestHandle{testutil.SingleElement()}
	},
	"refine2x2": func() []mesh.ForestHandle {
		return []mesh.ForestHandle{testutil.UniformRefinement2x2()}
	},
	"lshape": func() []mesh.ForestHandle {
		return []mesh.ForestHandle{testutil.LShapeHanging()}
	},
	"strip2": func() []mesh.ForestHandle {
		forests := testutil.TwoRankStrip()
		return []mesh.ForestHandle{forests[0], forests[1]}
	},
	"hanging2": func() []mesh.ForestHandle {
		forests := testutil.TwoRankHanging()
		return []mesh.ForestHandle{forests[0], forests[1]}
	},
	"empty": func() []mesh.ForestHandle {
		return []mesh.ForestHandle{testutil.EmptyPartition(0)}
	},
}

// scenarioNames returns the sorted list of valid --scenario values.
func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func buildScenario(name string) ([]mesh.ForestHandle, error) {
	build, ok := scenarios[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q (valid: %v)", name, scenarioNames())
	}
	return build(), nil
}
