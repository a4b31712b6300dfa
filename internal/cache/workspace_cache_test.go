package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "crm:ws:w1:dashboard", Key("w1", KindDashboard, ""))
	assert.Equal(t, "crm:ws:w1:search:acme corp", Key("w1", KindSearch, "  ACME   Corp "))
}
