package discover_test

import (
	"context"
	"testing"
	"time"

	looptomd "github.com/reggroux/loop-to-markdown"
	"github.com/reggroux/loop-to-markdown/discover"
	"github.com/reggroux/loop-to-markdown/mock"
	"github.com/stretchr/testify/assert"
)

func depthDiscoverer(driver *mock.Driver) *discover.Discoverer {
	return &discover.Discoverer{Driver: driver, EntryWait: 10 * time.Millisecond}
}

func TestInferDepth_explicit_level_attribute_wins(t *testing.T) {
	t.Parallel()

	driver := &mock.Driver{
		AttributeFn: func(ctx context.Context, el looptomd.Element, name string) (string, bool, error) {
			if name == "aria-level" {
				return "3", true, nil
			}
			return "", false, nil
		},
		// These must never be consulted when the attribute is present.
		AncestorCountFn: func(ctx context.Context, el looptomd.Element, selector string) (int, error) {
			t.Fatal("ancestor count consulted despite explicit level")
			return 0, nil
		},
	}

	depth := depthDiscoverer(driver).InferDepth(context.Background(), "node")

	// aria-level is 1-based.
	assert.Equal(t, 2, depth)
}

func TestInferDepth_level_one_normalizes_to_zero(t *testing.T) {
	t.Parallel()

	driver := &mock.Driver{
		AttributeFn: func(ctx context.Context, el looptomd.Element, name string) (string, bool, error) {
			if name == "aria-level" {
				return "1", true, nil
			}
			return "", false, nil
		},
	}

	assert.Equal(t, 0, depthDiscoverer(driver).InferDepth(context.Background(), "node"))
}

func TestInferDepth_ancestor_level_attribute(t *testing.T) {
	t.Parallel()

	driver := &mock.Driver{
		AttributeFn: func(ctx context.Context, el looptomd.Element, name string) (string, bool, error) {
			if el == looptomd.Element("ancestor") && name == "data-level" {
				return "4", true, nil
			}
			return "", false, nil
		},
		ClosestFn: func(ctx context.Context, el looptomd.Element, selector string) (looptomd.Element, bool, error) {
			return "ancestor", true, nil
		},
	}

	assert.Equal(t, 3, depthDiscoverer(driver).InferDepth(context.Background(), "node"))
}

func TestInferDepth_nesting_group_count(t *testing.T) {
	t.Parallel()

	driver := &mock.Driver{
		AncestorCountFn: func(ctx context.Context, el looptomd.Element, selector string) (int, error) {
			return 2, nil
		},
	}

	assert.Equal(t, 2, depthDiscoverer(driver).InferDepth(context.Background(), "node"))
}

func TestInferDepth_indentation_fallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		padding string
		margin  string
		want    int
	}{
		{"padding only", "48px", "0px", 2},
		{"margin larger than padding", "24px", "72px", 3},
		{"rounds to nearest unit", "50px", "0px", 2},
		{"zero indent falls through to zero", "0px", "0px", 0},
		{"unparseable values default to zero", "auto", "inherit", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			driver := &mock.Driver{
				StyleFn: func(ctx context.Context, el looptomd.Element, property string) (string, error) {
					if property == "padding-left" {
						return tt.padding, nil
					}
					return tt.margin, nil
				},
			}

			assert.Equal(t, tt.want, depthDiscoverer(driver).InferDepth(context.Background(), "node"))
		})
	}
}

func TestInferDepth_extraction_failure_defaults_to_zero(t *testing.T) {
	t.Parallel()

	boom := looptomd.Errorf(looptomd.EUNAVAILABLE, "stale element")
	driver := &mock.Driver{
		AttributeFn: func(ctx context.Context, el looptomd.Element, name string) (string, bool, error) {
			return "", false, boom
		},
		ClosestFn: func(ctx context.Context, el looptomd.Element, selector string) (looptomd.Element, bool, error) {
			return nil, false, boom
		},
		AncestorCountFn: func(ctx context.Context, el looptomd.Element, selector string) (int, error) {
			return 0, boom
		},
		StyleFn: func(ctx context.Context, el looptomd.Element, property string) (string, error) {
			return "", boom
		},
	}

	assert.Equal(t, 0, depthDiscoverer(driver).InferDepth(context.Background(), "node"))
}
