package simulation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	dataprep "lantern/internal/dataprep/domain"
)

// minEdgeVolume drops numerical noise from the trading graph.
const minEdgeVolume = 1e-9

// MemberName labels member m in the trading network.
func MemberName(m int) string {
	return fmt.Sprintf("M%d", m+1)
}

// buildNetwork turns the accumulated from x to flow matrix into nodes, edges
// and a circular layout.
func buildNetwork(flows *mat.Dense) dataprep.TradingNetwork {
	members, _ := flows.Dims()
	network := dataprep.TradingNetwork{
		Nodes:  make([]string, members),
		Edges:  []dataprep.TradingEdge{},
		Layout: make(map[string][2]float64, members),
	}
	for m := 0; m < members; m++ {
		name := MemberName(m)
		network.Nodes[m] = name
		angle := 2 * math.Pi * float64(m) / float64(members)
		network.Layout[name] = [2]float64{math.Cos(angle), math.Sin(angle)}
	}
	for from := 0; from < members; from++ {
		for to := 0; to < members; to++ {
			volume := flows.At(from, to)
			if from == to || volume < minEdgeVolume {
				continue
			}
			network.Edges = append(network.Edges, dataprep.TradingEdge{
				From:   MemberName(from),
				To:     MemberName(to),
				Volume: volume,
			})
		}
	}
	return network
}
