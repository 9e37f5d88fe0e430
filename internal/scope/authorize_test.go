package scope

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allowContext(pairs map[Type][]int64) Context {
	var grants []Grant
	for t, ids := range pairs {
		for _, id := range ids {
			grants = append(grants, Grant{TenantID: 1, UserID: 7, Type: t, ScopeID: id, Effect: EffectAllow})
		}
	}
	return Fold(grants)
}

func TestAuthorizeWriteConjunction(t *testing.T) {
	sc := allowContext(map[Type][]int64{
		TypeGroup:   {1},
		TypeCountry: {100},
	})

	// Full match across every declared dimension.
	assert.True(t, AuthorizeWrite(sc, map[Type]int64{TypeGroup: 1, TypeCountry: 100}))

	// No dimension matches.
	assert.False(t, AuthorizeWrite(sc, map[Type]int64{TypeGroup: 2, TypeCountry: 200}))

	// Partial match is insufficient: a GROUP grant alone does not authorize a
	// resource in a country the user is not separately scoped to.
	assert.False(t, AuthorizeWrite(sc, map[Type]int64{TypeGroup: 1, TypeCountry: 200}))
}

func TestAuthorizeWriteEvaluatesOnlyDeclaredDimensions(t *testing.T) {
	// An operating-unit create declares only LEGAL_ENTITY; group/country
	// coverage is not additionally required.
	sc := allowContext(map[Type][]int64{TypeLegalEntity: {42}})
	assert.True(t, AuthorizeWrite(sc, map[Type]int64{TypeLegalEntity: 42}))
	assert.False(t, AuthorizeWrite(sc, map[Type]int64{TypeLegalEntity: 43}))
}

func TestAuthorizeWriteNoDimensionsRequiresTenantWide(t *testing.T) {
	sc := allowContext(map[Type][]int64{TypeGroup: {1}})
	assert.False(t, AuthorizeWrite(sc, nil))

	wide := Fold([]Grant{{TenantID: 1, UserID: 7, Type: TypeTenant, ScopeID: 1, Effect: EffectAllow}})
	assert.True(t, AuthorizeWrite(wide, nil))
}

func TestAuthorizeFilterExactLevel(t *testing.T) {
	sc := allowContext(map[Type][]int64{TypeLegalEntity: {42}})
	assert.NoError(t, AuthorizeFilter(sc, TypeLegalEntity, 42, nil))
	assert.ErrorIs(t, AuthorizeFilter(sc, TypeLegalEntity, 43, nil), ErrForbidden)
}

func TestAuthorizeFilterBroaderGrantCoversAncestor(t *testing.T) {
	sc := allowContext(map[Type][]int64{TypeGroup: {5}})
	ancestors := map[Type]int64{TypeGroup: 5, TypeCountry: 100}
	assert.NoError(t, AuthorizeFilter(sc, TypeLegalEntity, 42, ancestors))

	other := map[Type]int64{TypeGroup: 6}
	assert.ErrorIs(t, AuthorizeFilter(sc, TypeLegalEntity, 42, other), ErrForbidden)
}

func TestAuthorizeFilterLeafGrantsDoNotImplyParentAuthority(t *testing.T) {
	// Holding every operating unit under a legal entity individually does not
	// authorize asserting "all units under this parent".
	sc := allowContext(map[Type][]int64{TypeOperatingUnit: {1, 2, 3}})
	err := AuthorizeFilter(sc, TypeLegalEntity, 42, map[Type]int64{TypeGroup: 5})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAuthorizeFilterTenantWide(t *testing.T) {
	wide := Fold([]Grant{{TenantID: 1, UserID: 7, Type: TypeTenant, ScopeID: 1, Effect: EffectAllow}})
	assert.NoError(t, AuthorizeFilter(wide, TypeOperatingUnit, 9, nil))
}

func TestAuthorizeFilterInvalidInput(t *testing.T) {
	sc := NewContext()
	assert.ErrorIs(t, AuthorizeFilter(sc, TypeTenant, 1, nil), ErrInvalidInput)
	assert.ErrorIs(t, AuthorizeFilter(sc, "REGION", 1, nil), ErrInvalidInput)
	assert.ErrorIs(t, AuthorizeFilter(sc, TypeGroup, 0, nil), ErrInvalidInput)
}

type stubGrantStore struct {
	grants []Grant
	err    error
	calls  int
}

func (s *stubGrantStore) ReplaceGrants(_ context.Context, _, _ int64, _ []GrantInput) ([]Grant, error) {
	return nil, nil
}

func (s *stubGrantStore) Grants(_ context.Context, _, _ int64) ([]Grant, error) {
	s.calls++
	return s.grants, s.err
}

func TestResolverResolve(t *testing.T) {
	store := &stubGrantStore{grants: []Grant{
		{TenantID: 1, UserID: 7, Type: TypeGroup, ScopeID: 10, Effect: EffectAllow},
	}}
	r, err := NewResolver(store)
	require.NoError(t, err)

	sc, err := r.Resolve(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.True(t, sc.Contains(TypeGroup, 10))

	again, err := r.Resolve(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, sc, again)
	// No cross-request caching: each resolve hits the store.
	assert.Equal(t, 2, store.calls)
}

func TestResolverRejectsNonPositiveIDs(t *testing.T) {
	r, err := NewResolver(&stubGrantStore{})
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), 0, 7)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = r.Resolve(context.Background(), 1, -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewResolverRequiresStore(t *testing.T) {
	_, err := NewResolver(nil)
	assert.Error(t, err)
}
