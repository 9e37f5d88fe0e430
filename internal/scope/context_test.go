package scope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grant(t Type, id int64, e Effect) Grant {
	return Grant{TenantID: 1, UserID: 7, Type: t, ScopeID: id, Effect: e}
}

func TestFoldEmptyGrantsAuthorizesNothing(t *testing.T) {
	sc := Fold(nil)
	assert.True(t, sc.Empty())
	assert.False(t, sc.TenantWide)
	assert.False(t, sc.Contains(TypeGroup, 1))
	assert.False(t, AuthorizeWrite(sc, map[Type]int64{TypeGroup: 1}))
	assert.True(t, Visibility(sc).Empty())
}

func TestFoldAllowPopulatesSets(t *testing.T) {
	sc := Fold([]Grant{
		grant(TypeGroup, 10, EffectAllow),
		grant(TypeCountry, 90, EffectAllow),
		grant(TypeLegalEntity, 300, EffectAllow),
		grant(TypeOperatingUnit, 4000, EffectAllow),
	})
	assert.False(t, sc.TenantWide)
	assert.True(t, sc.Contains(TypeGroup, 10))
	assert.True(t, sc.Contains(TypeCountry, 90))
	assert.True(t, sc.Contains(TypeLegalEntity, 300))
	assert.True(t, sc.Contains(TypeOperatingUnit, 4000))
	assert.False(t, sc.Contains(TypeGroup, 11))
}

func TestFoldTenantWideOverride(t *testing.T) {
	sc := Fold([]Grant{
		grant(TypeTenant, 1, EffectAllow),
	})
	assert.True(t, sc.TenantWide)
	assert.True(t, sc.Contains(TypeGroup, 999))
	assert.True(t, AuthorizeWrite(sc, map[Type]int64{TypeGroup: 5, TypeCountry: 6}))
	assert.True(t, Visibility(sc).All)
}

func TestFoldTenantDenySupersedesTenantAllow(t *testing.T) {
	sc := Fold([]Grant{
		grant(TypeTenant, 1, EffectAllow),
		grant(TypeTenant, 1, EffectDeny),
	})
	assert.False(t, sc.TenantWide)
}

func TestFoldDenyIsSticky(t *testing.T) {
	// Once denied while folding one set, a later ALLOW for the same identity
	// must not resurrect it.
	sc := Fold([]Grant{
		grant(TypeGroup, 10, EffectAllow),
		grant(TypeGroup, 10, EffectDeny),
		grant(TypeGroup, 10, EffectAllow),
	})
	assert.False(t, sc.Contains(TypeGroup, 10))
}

func TestFoldDeterministic(t *testing.T) {
	grants := []Grant{
		grant(TypeGroup, 10, EffectAllow),
		grant(TypeLegalEntity, 300, EffectAllow),
		grant(TypeOperatingUnit, 4000, EffectDeny),
	}
	first := Fold(grants)
	second := Fold(grants)
	require.Equal(t, first, second)
}

func TestGrantInputValidation(t *testing.T) {
	cases := []struct {
		name  string
		input GrantInput
		ok    bool
	}{
		{"valid allow", GrantInput{Type: TypeGroup, ScopeID: 1, Effect: EffectAllow}, true},
		{"valid deny", GrantInput{Type: TypeOperatingUnit, ScopeID: 9, Effect: EffectDeny}, true},
		{"unknown type", GrantInput{Type: "REGION", ScopeID: 1, Effect: EffectAllow}, false},
		{"zero id", GrantInput{Type: TypeGroup, ScopeID: 0, Effect: EffectAllow}, false},
		{"negative id", GrantInput{Type: TypeGroup, ScopeID: -4, Effect: EffectAllow}, false},
		{"unknown effect", GrantInput{Type: TypeGroup, ScopeID: 1, Effect: "BLOCK"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.input.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidInput)
			}
		})
	}
}

func TestParseType(t *testing.T) {
	for _, raw := range []string{"TENANT", "GROUP", "COUNTRY", "LEGAL_ENTITY", "OPERATING_UNIT"} {
		parsed, err := ParseType(raw)
		require.NoError(t, err)
		assert.Equal(t, Type(raw), parsed)
	}
	_, err := ParseType("BRANCH")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
