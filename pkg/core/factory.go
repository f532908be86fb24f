package core

import (
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/go-drift/renderkit/pkg/errors"
)

// Factory resolves an Element's type to a new Component.
type Factory interface {
	CreateComponent(el *Element, meta *Meta) (Component, error)
	// AddCustomResolver maps string tags to custom component types so host
	// applications can extend the primitive vocabulary.
	AddCustomResolver(resolvers map[Tag]*ComponentType)
}

// DefaultFactory resolves ComponentTypes directly, string tags through the
// registered custom resolvers, and everything else through a DrawableFactory.
type DefaultFactory struct {
	drawables DrawableFactory
	mu        sync.RWMutex
	custom    map[Tag]*ComponentType
}

// NewFactory creates a factory backed by drawables.
func NewFactory(drawables DrawableFactory) *DefaultFactory {
	return &DefaultFactory{
		drawables: drawables,
		custom:    map[Tag]*ComponentType{Fragment: fragmentType},
	}
}

// AddCustomResolver registers tag resolvers. Later registrations win.
func (f *DefaultFactory) AddCustomResolver(resolvers map[Tag]*ComponentType) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for tag, ctype := range resolvers {
		f.custom[tag] = ctype
	}
}

// CreateComponent instantiates the component for el. Unknown tags yield a
// *errors.ConfigError wrapping errors.ErrNoResolver.
func (f *DefaultFactory) CreateComponent(el *Element, meta *Meta) (Component, error) {
	switch t := el.Type().(type) {
	case *ComponentType:
		return newCustom(t, el), nil
	case Tag:
		f.mu.RLock()
		ctype := f.custom[t]
		f.mu.RUnlock()
		if ctype != nil {
			return newCustom(ctype, el), nil
		}
		if f.drawables == nil {
			return nil, noResolver(t.TypeName(), errors.ErrNoResolver)
		}
		drawable, err := f.drawables.CreateDrawable(t, el.Props())
		if err != nil {
			return nil, noResolver(t.TypeName(), err)
		}
		return newPrimitive(el, drawable), nil
	case nil:
		return nil, noResolver("<nil>", errors.ErrNoResolver)
	default:
		return nil, noResolver(t.TypeName(), fmt.Errorf("%w: unsupported type %T", errors.ErrNoResolver, t))
	}
}

func noResolver(name string, err error) error {
	if !stderrors.Is(err, errors.ErrNoResolver) {
		err = fmt.Errorf("%w: %w", errors.ErrNoResolver, err)
	}
	return &errors.ConfigError{Op: "core.CreateComponent", Component: name, Err: err}
}

// fragmentType lets Fragment appear as an ordinary child element.
var fragmentType = Define(string(Fragment), func() Instance { return &fragment{} })

type fragment struct {
	StateBase
}

func (f *fragment) Render() Result {
	return Ready(Frag(f.Children()...))
}
