// Profiling:
// go build ./profile/query
// go tool pprof -http=":8000" -nodefraction=0.001 ./query cpu.pprof

package main

import (
	"github.com/pkg/profile"

	"pkg.world.dev/ncs"
)

type position struct {
	X, Y, Z float32
}

type velocity struct {
	X, Y, Z float32
}

type health struct {
	Value int64
}

func main() {
	rounds := 50
	iters := 10000
	entities := 10000
	p := profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, iters, entities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	for i := 0; i < rounds; i++ {
		world, err := ncs.NewWorld()
		if err != nil {
			panic(err)
		}
		for k := 0; k < numEntities; k++ {
			e := world.Entity()
			ncs.Set(world, e, position{X: float32(k)})
			ncs.Set(world, e, velocity{X: 1, Y: 1, Z: 1})
			if k%2 == 0 {
				ncs.Set(world, e, health{Value: int64(k)})
			}
		}

		for j := 0; j < iters; j++ {
			for _, row := range ncs.Query2[position, velocity](world) {
				row.A.X += row.B.X
				row.A.Y += row.B.Y
				row.A.Z += row.B.Z
			}
		}
		if err := world.Close(); err != nil {
			panic(err)
		}
	}
}
