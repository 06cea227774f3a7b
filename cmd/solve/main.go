// Command solve is the CLI entry point wiring the Problem Normalizer, the
// Matrix Adapter, the Routing Model Builder and the Solution Decoder into
// one pipeline, exactly as every nextmv-io-demos/*/main.go does for its own
// domain. It replaces the out-of-scope HTTP controller (spec.md §1, §6)
// with the transport-agnostic shape that controller would sit in front of:
// a Problem document in on stdin, a Solution document out on stdout.
package main

import (
	"log"

	"github.com/nextmv-io/sdk/run"
	"github.com/nextmv-io/sdk/store"

	"github.com/STAMIDES/optimization/internal/config"
	"github.com/STAMIDES/optimization/internal/domain"
	"github.com/STAMIDES/optimization/internal/matrix"
	"github.com/STAMIDES/optimization/internal/normalize"
	"github.com/STAMIDES/optimization/internal/routing"
)

// geometryWorkerPoolSize bounds the concurrent route-geometry fetches
// dispatched during decoding (spec.md §5, default 10).
const geometryWorkerPoolSize = 10

func main() {
	if err := run.Run(solve); err != nil {
		log.Fatal(err)
	}
}

// solve takes a domain.Problem and solver options and constructs a
// store.Solver, following the signature every teacher demo's solver
// function implements. All pipeline stages before route.NewRouter (the
// Problem Normalizer and the Matrix Adapter) run here, synchronously and in
// sequence, per spec.md §5's "matrix and solve are sequential within one
// request" ordering.
func solve(problem domain.Problem, opts store.Options) (store.Solver, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	np, err := normalize.Normalize(problem)
	if err != nil {
		return nil, err
	}

	client := matrix.NewClient(&cfg.OSRM)
	matrices, err := client.BuildMatrices(np.Coordinates, cfg.DistanceScale)
	if err != nil {
		return nil, err
	}

	model, err := routing.Build(np, matrices, cfg)
	if err != nil {
		return nil, err
	}
	model.AttachFormat(client, geometryWorkerPoolSize)

	return model.Solver(opts)
}
