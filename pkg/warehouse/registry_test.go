package warehouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	registerStub(t, "zz-stub", 1111, nil)
	registerStub(t, "aa-stub", 2222, nil)

	_, ok := GetRegistration("zz-stub")
	assert.True(t, ok)
	_, ok = GetRegistration("not-registered")
	assert.False(t, ok)

	reg, ok := GetRegistration("aa-stub")
	assert.True(t, ok)
	assert.Equal(t, 2222, reg.Info.DefaultPort)

	adapters := RegisteredAdapters()
	var types []string
	for _, a := range adapters {
		types = append(types, a.Type)
	}
	assert.Contains(t, types, "aa-stub")
	assert.Contains(t, types, "zz-stub")
	assert.IsIncreasing(t, types)
}
