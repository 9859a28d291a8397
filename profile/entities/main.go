// Profiling:
// go build ./profile/entities
// go tool pprof -http=":8000" -nodefraction=0.001 ./entities mem.pprof

package main

import (
	"github.com/pkg/profile"

	"pkg.world.dev/ncs"
)

type comp1 struct {
	V int64
	W int64
}

type comp2 struct {
	V int64
	W int64
}

func main() {
	rounds := 50
	iters := 100
	entities := 1000
	p := profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	run(rounds, iters, entities)
	p.Stop()
}

func run(rounds, iters, numEntities int) {
	for i := 0; i < rounds; i++ {
		world, err := ncs.NewWorld()
		if err != nil {
			panic(err)
		}

		for j := 0; j < iters; j++ {
			spawned := make([]ncs.EntityID, 0, numEntities)
			for k := 0; k < numEntities; k++ {
				e := world.Entity()
				ncs.Set(world, e, comp1{V: int64(k)})
				ncs.Set(world, e, comp2{V: int64(k)})
				spawned = append(spawned, e)
			}
			for _, row := range ncs.Query2[comp1, comp2](world) {
				row.A.V += row.B.V
				row.A.W += row.B.W
			}
			for _, e := range spawned {
				world.Despawn(e)
			}
		}
		if err := world.Close(); err != nil {
			panic(err)
		}
	}
}
