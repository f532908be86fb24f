package widgets

import (
	stderrors "errors"
	"fmt"

	"github.com/go-drift/renderkit/pkg/core"
	"github.com/go-drift/renderkit/pkg/errors"
)

var errConsumerTarget = stderrors.New("exactly one of name and provider must be set")

// ContextProviderType is the default provider type. Use [DefineProvider]
// for providers that consumers find by type identity.
var ContextProviderType = DefineProvider("ContextProvider")

// ContextConsumerType resolves the nearest matching provider and renders
// its value.
var ContextConsumerType = core.Define("ContextConsumer", func() core.Instance { return &consumer{} })

// DefineProvider returns a new provider component type. Each call yields a
// distinct type that consumers can match with the "provider" prop.
func DefineProvider(name string) *core.ComponentType {
	return core.Define(name, func() core.Instance { return &Provider{} })
}

// ContextProvider publishes Value to descendant consumers.
//
// Example:
//
//	widgets.ContextProvider{
//	    Name:  "theme",
//	    Value: theme,
//	    Children: []*core.Element{
//	        widgets.ContextConsumer{Name: "theme", Render: renderThemed}.Element(),
//	    },
//	}.Element()
type ContextProvider struct {
	// Type overrides the provider type; defaults to ContextProviderType.
	Type     *core.ComponentType
	Name  string
	Value any
	// Publish also stores Value under Name in the root's ContextManager,
	// where components outside the subtree read it with core.UseContext.
	// The last publisher of a name wins.
	Publish  bool
	Key      any
	Children []*core.Element
}

// Element builds the provider element.
func (p ContextProvider) Element() *core.Element {
	t := p.Type
	if t == nil {
		t = ContextProviderType
	}
	props := core.Props{"value": p.Value}
	if p.Name != "" {
		props["name"] = p.Name
	}
	if p.Publish {
		props["publish"] = true
	}
	if p.Key != nil {
		props[core.KeyProp] = p.Key
	}
	return core.H(t, props, p.Children...)
}

// Provider is the live instance behind every provider type.
type Provider struct {
	core.StateBase
	value       any
	subscribers core.Listeners[any]
}

func (p *Provider) Init() error {
	p.value = p.Props()["value"]
	p.publish(p.Props())
	return nil
}

func (p *Provider) publish(props core.Props) {
	name := props.String("name")
	if props["publish"] != true || name == "" {
		return
	}
	if meta := p.Meta(); meta != nil && meta.Contexts != nil {
		meta.Contexts.Set(name, p.value)
	}
}

// Value returns the current value.
func (p *Provider) Value() any { return p.value }

// Name returns the provider's name prop.
func (p *Provider) Name() string { return p.Props().String("name") }

// Subscribe registers fn, calls it once with the current value before
// returning, and returns an unsubscribe function.
func (p *Provider) Subscribe(fn func(any)) func() {
	remove := p.subscribers.Add(fn)
	fn(p.value)
	return remove
}

// SubscriberCount returns the number of live subscriptions.
func (p *Provider) SubscriberCount() int { return p.subscribers.Len() }

// WillReceiveProps notifies subscribers in subscription order when the new
// value is a different reference.
func (p *Provider) WillReceiveProps(next core.Props) {
	value := next["value"]
	if core.SameRef(p.value, value) {
		return
	}
	p.value = value
	p.subscribers.Notify(value)
	p.publish(next)
}

func (p *Provider) Render() core.Result {
	return core.Ready(core.Frag(p.Children()...))
}

// ContextConsumer renders the value of its nearest matching provider.
// Exactly one of Name and Provider must be set.
type ContextConsumer struct {
	Name     string
	Provider *core.ComponentType
	Render   func(value any) *core.Element
	Key      any
}

// Element builds the consumer element.
func (c ContextConsumer) Element() *core.Element {
	props := core.Props{"render": c.Render}
	if c.Name != "" {
		props["name"] = c.Name
	}
	if c.Provider != nil {
		props["provider"] = c.Provider
	}
	if c.Key != nil {
		props[core.KeyProp] = c.Key
	}
	return core.H(ContextConsumerType, props)
}

type consumer struct {
	core.StateBase
}

func (c *consumer) Init() error {
	props := c.Props()
	name := props.String("name")
	ptype, _ := props["provider"].(*core.ComponentType)
	if (name == "") == (ptype == nil) {
		return &errors.ConfigError{
			Op:        "widgets.ContextConsumer",
			Component: "ContextConsumer",
			Err:       errConsumerTarget,
		}
	}
	provider := FindProvider(c.Component(), name, ptype)
	if provider == nil {
		target := name
		if ptype != nil {
			target = ptype.TypeName()
		}
		return &errors.ConfigError{
			Op:        "widgets.ContextConsumer",
			Component: "ContextConsumer",
			Err:       fmt.Errorf("%w: %q", errors.ErrNoProvider, target),
		}
	}
	c.OnDispose(provider.Subscribe(func(v any) {
		c.SetState(core.State{"value": v})
	}))
	return nil
}

func (c *consumer) Render() core.Result {
	render, ok := c.Props()["render"].(func(any) *core.Element)
	if !ok {
		return core.Ready(nil)
	}
	return core.Ready(render(c.State()["value"]))
}

// FindProvider returns the nearest provider above c matching name, or of
// type ptype when ptype is non-nil.
func FindProvider(c core.Component, name string, ptype *core.ComponentType) *Provider {
	found := core.FindAncestor(c, func(a core.Component) bool {
		custom, ok := a.(*core.Custom)
		if !ok {
			return false
		}
		p, ok := custom.Instance().(*Provider)
		if !ok {
			return false
		}
		if ptype != nil {
			return custom.ComponentType() == ptype
		}
		return p.Name() == name
	})
	if found == nil {
		return nil
	}
	return found.(*core.Custom).Instance().(*Provider)
}
