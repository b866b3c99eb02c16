package reconcile

import (
	"fmt"
	"reflect"
	"time"

	"dario.cat/mergo"
	"github.com/comparely/catalog-service/internal/types"
)

// fieldsTransformer merges unknown keys one by one instead of replacing the
// whole map.
type fieldsTransformer struct{}

var fieldsType = reflect.TypeOf(types.Fields(nil))

func (fieldsTransformer) Transformer(t reflect.Type) func(dst, src reflect.Value) error {
	if t != fieldsType {
		return nil
	}
	return func(dst, src reflect.Value) error {
		if src.IsNil() {
			return nil
		}
		if dst.IsNil() {
			dst.Set(reflect.MakeMap(t))
		}
		iter := src.MapRange()
		for iter.Next() {
			dst.SetMapIndex(iter.Key(), iter.Value())
		}
		return nil
	}
}

// Present fields of the incoming record replace stored ones; nil pointers and
// empty lists leave the stored value alone.
var mergeOptions = []func(*mergo.Config){
	mergo.WithOverride,
	mergo.WithoutDereference,
	mergo.WithTransformers(fieldsTransformer{}),
}

func prepareExtra(dst *types.Fields, src types.Fields) {
	if *dst == nil && len(src) > 0 {
		*dst = make(types.Fields, len(src))
	}
}

// MergeCategory copies every field present in src onto dst. The stored id
// is never replaced.
func MergeCategory(dst, src *types.Category) error {
	in := *src
	in.ID = ""
	prepareExtra(&dst.Extra, in.Extra)
	if err := mergo.Merge(dst, in, mergeOptions...); err != nil {
		return fmt.Errorf("merge category %s: %w", dst.Label(), err)
	}
	return nil
}

// MergeProduct copies every field present in src onto dst. A product that
// already has an id keeps it.
func MergeProduct(dst, src *types.Product) error {
	in := *src
	if dst.ID != "" {
		in.ID = ""
	}
	prepareExtra(&dst.Extra, in.Extra)
	if err := mergo.Merge(dst, in, mergeOptions...); err != nil {
		return fmt.Errorf("merge product %s: %w", dst.ID, err)
	}
	return nil
}

// stampCategory marks a category as touched by the current pass.
func stampCategory(c *types.Category, now time.Time) {
	c.LastUpdate = types.TimePtr(now)
	c.WasUpdated = types.BoolPtr(true)
}

func stampProduct(p *types.Product, now time.Time) {
	p.LastUpdate = types.TimePtr(now)
	p.WasUpdated = types.BoolPtr(true)
}
