package core

// Option configures StatefulElement and ModularTemplate construction.
type Option func(*options)

type options struct {
	registry *Registry
}

// WithRegistry installs back-references in r instead of DefaultRegistry.
func WithRegistry(r *Registry) Option {
	return func(o *options) {
		if r != nil {
			o.registry = r
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{registry: DefaultRegistry}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
