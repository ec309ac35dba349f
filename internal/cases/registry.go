package cases

import "github.com/prometheusresearch/pbbt/internal/run"

// DefaultRegistry assembles the standard case kinds. Registration
// order doubles as recognition precedence, so the structural kinds
// come before the behavioral ones.
func DefaultRegistry() *run.Registry {
	reg, err := run.NewRegistry(
		&run.Kind{Name: "set", Input: setInput, New: newSet},
		&run.Kind{Name: "suite", Input: suiteInput, Output: suiteOutput, New: newSuite},
		&run.Kind{Name: "include", Input: includeInput, Output: includeOutput, New: newInclude},
		&run.Kind{Name: "script", Input: scriptInput, Output: scriptOutput, New: newScript},
		&run.Kind{Name: "sh", Input: shellInput, Output: shellOutput, New: newShell},
		&run.Kind{Name: "write", Input: writeInput, New: newWrite},
		&run.Kind{Name: "read", Input: readInput, Output: readOutput, New: newRead},
		&run.Kind{Name: "rm", Input: rmInput, New: newRm},
		&run.Kind{Name: "mkdir", Input: mkdirInput, New: newMkdir},
		&run.Kind{Name: "rmdir", Input: rmdirInput, New: newRmdir},
	)
	if err != nil {
		panic(err)
	}
	return reg
}
