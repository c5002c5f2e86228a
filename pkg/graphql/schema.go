// Package graphql exposes the optimize operation as a GraphQL query,
// mirroring the REST endpoint for dashboard collaborators that prefer
// a typed query surface.
package graphql

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/cluso-signal/pkg/signal"
)

// OptimizeFunc runs one optimization for the resolver.
type OptimizeFunc func(lanes []signal.LaneCount) (*signal.IntersectionTiming, error)

// GenerateSchema builds the schema around the given optimize function.
func GenerateSchema(optimize OptimizeFunc) (graphql.Schema, error) {
	countInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CountInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"class": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"count": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
		},
	})

	laneInput := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "LaneInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"direction": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"counts":    &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(countInput))},
		},
	})

	phaseType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PhaseTiming",
		Fields: graphql.Fields{
			"direction": &graphql.Field{Type: graphql.String},
			"green":     &graphql.Field{Type: graphql.Int},
			"yellow":    &graphql.Field{Type: graphql.Int},
			"red":       &graphql.Field{Type: graphql.Int},
			"pcu":       &graphql.Field{Type: graphql.Float},
			"flowRatio": &graphql.Field{
				Type: graphql.Float,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					if phase, ok := p.Source.(signal.PhaseTiming); ok {
						return phase.FlowRatio, nil
					}
					return nil, nil
				},
			},
		},
	})

	timingType := graphql.NewObject(graphql.ObjectConfig{
		Name: "IntersectionTiming",
		Fields: graphql.Fields{
			"cycleLength": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*signal.IntersectionTiming).CycleLength, nil
				},
			},
			"lostTime": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*signal.IntersectionTiming).LostTime, nil
				},
			},
			"saturationDegree": &graphql.Field{
				Type: graphql.Float,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*signal.IntersectionTiming).SaturationDegree, nil
				},
			},
			"flags": &graphql.Field{
				Type: graphql.NewList(graphql.String),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*signal.IntersectionTiming).Flags, nil
				},
			},
			"phases": &graphql.Field{
				Type: graphql.NewList(phaseType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*signal.IntersectionTiming).Phases, nil
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"optimize": &graphql.Field{
				Type:        timingType,
				Description: "Compute the optimal signal timing from four lane counts",
				Args: graphql.FieldConfigArgument{
					"lanes": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(laneInput))),
					},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					lanes, err := parseLaneArgs(p.Args["lanes"])
					if err != nil {
						return nil, err
					}
					return optimize(lanes)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
}

// parseLaneArgs converts the raw resolver arguments into lane counts.
func parseLaneArgs(raw any) ([]signal.LaneCount, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("lanes must be a list")
	}

	lanes := make([]signal.LaneCount, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("lane must be an object")
		}

		direction, _ := obj["direction"].(string)
		lane := signal.LaneCount{
			Direction: signal.Direction(direction),
			Counts:    make(map[signal.VehicleClass]int),
		}

		if counts, ok := obj["counts"].([]any); ok {
			for _, c := range counts {
				pair, ok := c.(map[string]any)
				if !ok {
					continue
				}
				class, _ := pair["class"].(string)
				count, _ := pair["count"].(int)
				lane.Counts[signal.VehicleClass(class)] += count
			}
		}

		lanes = append(lanes, lane)
	}

	return lanes, nil
}
