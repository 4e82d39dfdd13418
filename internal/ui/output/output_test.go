package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/imamik/hdpctl/internal/cloud"
	"github.com/imamik/hdpctl/internal/cluster"
)

func testCluster() *cluster.Cluster {
	c := &cluster.Cluster{
		Name: "demo",
		Masters: []cluster.Node{{
			Role:     cluster.RoleMaster,
			Instance: cloud.Instance{ID: "i-1", State: cloud.StateRunning, PublicDNS: "ec2-1.compute.amazonaws.com", Zone: "us-east-1a"},
		}},
		Workers: []cluster.Node{
			{Role: cluster.RoleWorker, Instance: cloud.Instance{ID: "i-2", State: cloud.StateRunning, PublicIP: "203.0.113.2", Zone: "us-east-1b"}},
			{Role: cluster.RoleWorker, Instance: cloud.Instance{ID: "i-3", State: cloud.StateStopped, PrivateIP: "10.0.0.3", Zone: "us-east-1b"}},
		},
	}
	c.AssignNames()
	return c
}

func TestInventory_Table(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, Inventory(&buf, testCluster(), FormatTable))

	out := buf.String()
	for _, want := range []string{"hdpmaster1", "hdpworker2", "i-3", "stopped", "ec2-1.compute.amazonaws.com", "203.0.113.2", "10.0.0.3"} {
		assert.Contains(t, out, want)
	}
}

func TestInventory_YAML(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, Inventory(&buf, testCluster(), FormatYAML))

	var doc inventoryDoc
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "demo", doc.Cluster)
	require.Len(t, doc.Masters, 1)
	assert.Equal(t, "hdpmaster1", doc.Masters[0].Name)
	require.Len(t, doc.Workers, 2)
	assert.Equal(t, "stopped", doc.Workers[1].State)
	assert.NotContains(t, buf.String(), "public_dns: \"\"")
}

func TestInventory_UnknownFormat(t *testing.T) {
	t.Parallel()
	err := Inventory(&bytes.Buffer{}, testCluster(), "json")
	assert.ErrorContains(t, err, "json")
}

func TestMaster(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, Master(&buf, testCluster(), FormatTable))
	assert.Equal(t, "ec2-1.compute.amazonaws.com\n", buf.String())

	buf.Reset()
	require.NoError(t, Master(&buf, testCluster(), FormatYAML))
	assert.Contains(t, buf.String(), "workers:")

	err := Master(&buf, &cluster.Cluster{Name: "empty"}, FormatTable)
	assert.ErrorIs(t, err, cluster.ErrNoMaster)
}

func TestDashboards(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []Dashboard{
		{Name: "Ambari", URL: "http://master.example:8080"},
		{Name: "Ganglia", URL: "http://master.example:5080/ganglia"},
	}, Dashboards("master.example", true))
	assert.Len(t, Dashboards("master.example", false), 1)

	var buf bytes.Buffer
	require.NoError(t, PrintDashboards(&buf, "demo", Dashboards("master.example", true)))
	assert.Contains(t, buf.String(), "demo")
	assert.Contains(t, buf.String(), "http://master.example:5080/ganglia")
}

func TestDestroyWarning(t *testing.T) {
	t.Parallel()
	c := testCluster()

	msg := DestroyWarning(c, false)
	assert.Contains(t, msg, "destroy the cluster demo")
	assert.Contains(t, msg, "> 203.0.113.2")
	assert.NotContains(t, msg, "Security groups")

	assert.Contains(t, DestroyWarning(c, true), "demo-master and demo-workers")
}
