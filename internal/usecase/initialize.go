package usecase

import (
	"fmt"
	"os"

	"axiom/config"
)

// intentFlowKinds seeds a taxonomy for teams that track intents through
// to monitoring: what the system should do, what must always hold, what
// interfaces promise, how things work, how success is judged, how fast
// to move, and what to watch.
var intentFlowKinds = []config.Definition{
	{Slug: "intent", Description: "A desired behavior or outcome the system should exhibit"},
	{Slug: "invariant", Description: "A property that must hold at all times"},
	{Slug: "contract", Description: "An interface promise between components or teams"},
	{Slug: "algorithm", Description: "How a computation or process works"},
	{Slug: "evaluation", Description: "How success or quality is judged"},
	{Slug: "pace", Description: "Expected cadence or speed of change"},
	{Slug: "monitor", Description: "A signal to watch in production"},
}

// Init creates the project directory layout and default configuration.
// An existing config is refused without force.
func Init(dir string, intentFlow, force bool) (*config.Config, error) {
	path := config.Path(dir)
	if _, err := os.Stat(path); err == nil && !force {
		return nil, fmt.Errorf("already initialized: %s exists", path)
	}

	if err := config.EnsureDir(dir); err != nil {
		return nil, err
	}
	cfg := config.DefaultConfig()
	if intentFlow {
		cfg.Kinds = append(cfg.Kinds, intentFlowKinds...)
	}
	if err := cfg.Save(path); err != nil {
		return nil, err
	}
	return cfg, nil
}
