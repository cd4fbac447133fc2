package momentum

import (
	"fmt"
	"math"
)

// Names of the default dimensions.
const (
	Psychological = "psychological"
	Tactical      = "tactical"
	Physical      = "physical"
	Technical     = "technical"
	Environmental = "environmental"
	Strategic     = "strategic"
)

const weightTolerance = 1e-9

// Dimension is one axis of momentum. Values are immutable once registered.
type Dimension struct {
	Name string `json:"name"`

	// Weight is the contribution to global momentum.
	Weight float64 `json:"weight"`

	// DecayRate is the fraction of distance from neutral retained per step.
	DecayRate float64 `json:"decay_rate"`

	// Volatility is only read by the forecaster.
	Volatility float64 `json:"volatility"`

	// TransferRate is the fraction of excess asymmetry moved per step.
	TransferRate float64 `json:"transfer_rate"`
}

// Registry is an ordered, validated set of dimensions.
type Registry struct {
	dims        []Dimension
	index       map[string]int
	totalWeight float64
}

// NewRegistry validates dims and returns a registry preserving their order.
func NewRegistry(dims ...Dimension) (*Registry, error) {
	if len(dims) == 0 {
		return nil, fmt.Errorf("%w: no dimensions", ErrInvalidDimension)
	}
	r := &Registry{
		dims:  make([]Dimension, len(dims)),
		index: make(map[string]int, len(dims)),
	}
	copy(r.dims, dims)
	for i, d := range r.dims {
		switch {
		case d.Name == "":
			return nil, fmt.Errorf("%w: empty name at position %d", ErrInvalidDimension, i)
		case d.Weight <= 0 || d.Weight > 1:
			return nil, fmt.Errorf("%w: %s weight %v not in (0,1]", ErrInvalidDimension, d.Name, d.Weight)
		case d.DecayRate <= 0 || d.DecayRate >= 1:
			return nil, fmt.Errorf("%w: %s decay rate %v not in (0,1)", ErrInvalidDimension, d.Name, d.DecayRate)
		case d.Volatility <= 0 || d.Volatility > 1:
			return nil, fmt.Errorf("%w: %s volatility %v not in (0,1]", ErrInvalidDimension, d.Name, d.Volatility)
		case d.TransferRate < 0 || d.TransferRate > 1:
			return nil, fmt.Errorf("%w: %s transfer rate %v not in [0,1]", ErrInvalidDimension, d.Name, d.TransferRate)
		}
		if _, dup := r.index[d.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate name %s", ErrInvalidDimension, d.Name)
		}
		r.index[d.Name] = i
		r.totalWeight += d.Weight
	}
	if math.Abs(r.totalWeight-1) > weightTolerance {
		return nil, fmt.Errorf("%w: weights sum to %v, want 1", ErrInvalidDimension, r.totalWeight)
	}
	return r, nil
}

// DefaultRegistry returns the six football dimensions.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(
		Dimension{Name: Psychological, Weight: 0.25, DecayRate: 0.90, Volatility: 0.30, TransferRate: 0.40},
		Dimension{Name: Tactical, Weight: 0.20, DecayRate: 0.95, Volatility: 0.20, TransferRate: 0.30},
		Dimension{Name: Physical, Weight: 0.20, DecayRate: 0.85, Volatility: 0.25, TransferRate: 0.30},
		Dimension{Name: Technical, Weight: 0.15, DecayRate: 0.92, Volatility: 0.15, TransferRate: 0.20},
		Dimension{Name: Environmental, Weight: 0.10, DecayRate: 0.93, Volatility: 0.40, TransferRate: 0.50},
		Dimension{Name: Strategic, Weight: 0.10, DecayRate: 0.97, Volatility: 0.20, TransferRate: 0.25},
	)
	if err != nil {
		panic(err)
	}
	return r
}

// Len returns the number of dimensions.
func (r *Registry) Len() int { return len(r.dims) }

// At returns the i-th dimension.
func (r *Registry) At(i int) Dimension { return r.dims[i] }

// Index returns the position of the named dimension.
func (r *Registry) Index(name string) (int, bool) {
	i, ok := r.index[name]
	return i, ok
}

// Dimensions returns a copy of the registered dimensions in order.
func (r *Registry) Dimensions() []Dimension {
	out := make([]Dimension, len(r.dims))
	copy(out, r.dims)
	return out
}

// Names returns dimension names in registry order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.dims))
	for i, d := range r.dims {
		out[i] = d.Name
	}
	return out
}
