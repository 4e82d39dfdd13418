package cluster

import (
	"context"
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/hdpctl/internal/cloud"
	"github.com/imamik/hdpctl/internal/cloud/fake"
	"github.com/imamik/hdpctl/internal/provisioning"
)

func newTestGroups(p cloud.GroupManager) *GroupProvisioner {
	return NewGroupProvisioner(p, provisioning.NewLogObserver(logr.Discard()))
}

func TestEnsureGroups_CreatesAndAuthorizesBoth(t *testing.T) {
	t.Parallel()
	p := fake.New()

	master, workers, err := newTestGroups(p).EnsureGroups(context.Background(), "demo")
	require.NoError(t, err)

	assert.Equal(t, "demo-master", master.Name)
	assert.Equal(t, "demo-workers", workers.Name)
	assert.Equal(t, 2, p.Calls("CreateSecurityGroup"))

	want := IngressRules(master.ID, workers.ID)
	for _, name := range []string{"demo-master", "demo-workers"} {
		g, ok := p.Group(name)
		require.True(t, ok)
		assert.ElementsMatch(t, want, g.Rules, name)
	}
	assert.Equal(t, 1, p.Authorizations(master.ID))
	assert.Equal(t, 1, p.Authorizations(workers.ID))
}

func TestEnsureGroups_Idempotent(t *testing.T) {
	t.Parallel()
	p := fake.New()
	g := newTestGroups(p)

	first, _, err := g.EnsureGroups(context.Background(), "demo")
	require.NoError(t, err)
	second, _, err := g.EnsureGroups(context.Background(), "demo")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, p.Calls("CreateSecurityGroup"))
	assert.Equal(t, 2, p.Calls("AuthorizeIngress"))
}

func TestEnsureGroups_LeavesExistingRulesAlone(t *testing.T) {
	t.Parallel()
	p := fake.New()
	custom := cloud.Rule{Protocol: cloud.ProtocolTCP, FromPort: 22, ToPort: 22, CIDR: "198.51.100.0/24"}
	masterID := p.AddGroup("demo-master", custom)

	_, workers, err := newTestGroups(p).EnsureGroups(context.Background(), "demo")
	require.NoError(t, err)

	g, _ := p.Group("demo-master")
	assert.Equal(t, []cloud.Rule{custom}, g.Rules)
	assert.Zero(t, p.Authorizations(masterID))
	assert.Equal(t, 1, p.Authorizations(workers.ID))
}

func TestEnsureGroups_Errors(t *testing.T) {
	t.Parallel()

	p := fake.New()
	p.Errors["CreateSecurityGroup"] = errors.New("quota exceeded")
	_, _, err := newTestGroups(p).EnsureGroups(context.Background(), "demo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "demo-master")
	assert.Contains(t, err.Error(), "quota exceeded")

	p = fake.New()
	p.Errors["AuthorizeIngress"] = errors.New("rule limit")
	_, _, err = newTestGroups(p).EnsureGroups(context.Background(), "demo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to authorize group")
}

func TestIngressRules(t *testing.T) {
	t.Parallel()
	rules := IngressRules("sg-m", "sg-w")
	require.Len(t, rules, 3)
	assert.Equal(t, "sg-m", rules[0].SourceGroupID)
	assert.Equal(t, "sg-w", rules[1].SourceGroupID)
	assert.Equal(t, cloud.Rule{Protocol: cloud.ProtocolTCP, FromPort: 0, ToPort: 65535, CIDR: "0.0.0.0/0"}, rules[2])
}
