package ir

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistinctKeyIgnoresIDAndDisplayNames(t *testing.T) {
	id := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	a := Attributes{
		"firstname": NewString("Bob"),
		"parent":    EntityRef{LogicalName: "account", ID: id, Name: "Contoso"},
		"status":    NewOptionSet(1, "Active"),
	}
	b := Attributes{
		"status":    NewOptionSet(1, ""),
		"parent":    NewRef("account", id),
		"firstname": NewString("Bob"),
	}

	ka, err := DistinctKey("contact", a)
	require.NoError(t, err)
	kb, err := DistinctKey("contact", b)
	require.NoError(t, err)
	assert.Equal(t, ka, kb)
	assert.Len(t, ka, 64)
}

func TestDistinctKeyIsByteExact(t *testing.T) {
	composed, err := DistinctKey("contact", Attributes{"firstname": NewString("Jos\u00e9")})
	require.NoError(t, err)
	decomposed, err := DistinctKey("contact", Attributes{"firstname": NewString("Jose\u0301")})
	require.NoError(t, err)
	assert.NotEqual(t, composed, decomposed)

	g1, err := GroupKey([]Value{NewString("a\xffb")})
	require.NoError(t, err)
	g2, err := GroupKey([]Value{NewString("a\ufffdb")})
	require.NoError(t, err)
	assert.NotEqual(t, g1, g2)
}

func TestDistinctKeyChangesWithContent(t *testing.T) {
	base := Attributes{"firstname": NewString("Bob")}

	k1, err := DistinctKey("contact", base)
	require.NoError(t, err)

	k2, err := DistinctKey("contact", Attributes{"firstname": NewString("Al")})
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)

	k3, err := DistinctKey("lead", base)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3, "logical name takes part in the key")

	k4, err := DistinctKey("contact", Attributes{"firstname": NewString("Bob"), "lastname": Null{}})
	require.NoError(t, err)
	assert.NotEqual(t, k1, k4, "attribute name set takes part in the key")
}

func TestDistinctKeyDecimalScale(t *testing.T) {
	k1, err := DistinctKey("invoice", Attributes{"total": MustDecimal("12.50")})
	require.NoError(t, err)
	k2, err := DistinctKey("invoice", Attributes{"total": MustDecimal("12.5")})
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
}

func TestGroupKey(t *testing.T) {
	k1, err := GroupKey([]Value{NewString("a"), NewInt(1)})
	require.NoError(t, err)
	k2, err := GroupKey([]Value{NewString("a"), NewInt(1)})
	require.NoError(t, err)
	k3, err := GroupKey([]Value{NewInt(1), NewString("a")})
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
}

func TestDomainSeparationPreventsCrossTypeCollision(t *testing.T) {
	data := []byte(`{"x":1}`)
	assert.NotEqual(t, hashWithDomain(DomainDistinct, data), hashWithDomain(DomainGroup, data))
}

func TestHashWithDomainNullSeparator(t *testing.T) {
	// "ab"+0x00+"c" must differ from "a"+0x00+"bc"
	assert.NotEqual(t, hashWithDomain("ab", []byte("c")), hashWithDomain("a", []byte("bc")))
}
