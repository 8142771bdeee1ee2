package scanner

import (
	_ "embed"
	"log/slog"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed policy.yml
var policyYAML []byte

// Outcome classifies one tool invocation's exit status.
type Outcome int

const (
	// OutcomeSuccess: tool ran cleanly.
	OutcomeSuccess Outcome = iota
	// OutcomeFindings: tool ran and reported issues; output is valid.
	OutcomeFindings
	// OutcomeFailure: unexpected exit status; output is not trusted.
	OutcomeFailure
)

type toolPolicy struct {
	Success  []int `yaml:"success"`
	Findings []int `yaml:"findings"`
}

type policyTable struct {
	Tools map[string]toolPolicy `yaml:"tools"`
}

var (
	policyOnce sync.Once
	policies   policyTable
)

func loadPolicies() {
	if err := yaml.Unmarshal(policyYAML, &policies); err != nil {
		slog.Warn("Failed to parse embedded tool policy table", "error", err)
		policies = policyTable{}
	}
}

// Classify maps a tool's exit code to an Outcome via the embedded policy
// table. Unknown tools treat only exit 0 as success.
func Classify(tool string, exitCode int) Outcome {
	policyOnce.Do(loadPolicies)

	p, ok := policies.Tools[tool]
	if !ok {
		if exitCode == 0 {
			return OutcomeSuccess
		}
		return OutcomeFailure
	}
	for _, c := range p.Success {
		if c == exitCode {
			return OutcomeSuccess
		}
	}
	for _, c := range p.Findings {
		if c == exitCode {
			return OutcomeFindings
		}
	}
	return OutcomeFailure
}
