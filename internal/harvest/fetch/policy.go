package fetch

import "time"

// Policy bounds the retry states. A class is retried until its failure count
// exceeds the max; the failure after that is fatal.
type Policy struct {
	NetworkMaxRetries  int           `yaml:"network_max_retries"`
	NetworkCooldown    time.Duration `yaml:"network_cooldown"`
	OverloadMaxRetries int           `yaml:"overload_max_retries"`
	OverloadCooldown   time.Duration `yaml:"overload_cooldown"`
	UnknownMaxRetries  int           `yaml:"unknown_max_retries"`
	UnknownCooldown    time.Duration `yaml:"unknown_cooldown"`
}

// DefaultPolicy matches the collector's production limits.
var DefaultPolicy = Policy{
	NetworkMaxRetries:  10,
	NetworkCooldown:    60 * time.Second,
	OverloadMaxRetries: 10,
	OverloadCooldown:   30 * time.Second,
	UnknownMaxRetries:  3,
	UnknownCooldown:    120 * time.Second,
}

// WithDefaults fills zero fields from d.
func (p Policy) WithDefaults(d Policy) Policy {
	if p.NetworkMaxRetries == 0 {
		p.NetworkMaxRetries = d.NetworkMaxRetries
	}
	if p.NetworkCooldown == 0 {
		p.NetworkCooldown = d.NetworkCooldown
	}
	if p.OverloadMaxRetries == 0 {
		p.OverloadMaxRetries = d.OverloadMaxRetries
	}
	if p.OverloadCooldown == 0 {
		p.OverloadCooldown = d.OverloadCooldown
	}
	if p.UnknownMaxRetries == 0 {
		p.UnknownMaxRetries = d.UnknownMaxRetries
	}
	if p.UnknownCooldown == 0 {
		p.UnknownCooldown = d.UnknownCooldown
	}
	return p
}

func (p Policy) bound(c Class) (maxRetries int, cooldown time.Duration) {
	switch c {
	case ClassTransientNetwork:
		return p.NetworkMaxRetries, p.NetworkCooldown
	case ClassServiceOverload:
		return p.OverloadMaxRetries, p.OverloadCooldown
	case ClassUnknownTransient:
		return p.UnknownMaxRetries, p.UnknownCooldown
	default:
		return 0, 0
	}
}
