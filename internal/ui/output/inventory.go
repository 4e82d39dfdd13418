package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/imamik/hdpctl/internal/cluster"
)

// Formats.
const (
	FormatTable = "table"
	FormatYAML  = "yaml"
)

type inventoryDoc struct {
	Cluster string    `yaml:"cluster"`
	Masters []nodeDoc `yaml:"masters"`
	Workers []nodeDoc `yaml:"workers"`
}

type nodeDoc struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name,omitempty"`
	State        string `yaml:"state"`
	PublicDNS    string `yaml:"public_dns,omitempty"`
	PublicIP     string `yaml:"public_ip,omitempty"`
	PrivateIP    string `yaml:"private_ip,omitempty"`
	Zone         string `yaml:"zone,omitempty"`
	InstanceType string `yaml:"instance_type,omitempty"`
}

func toDocs(nodes []cluster.Node) []nodeDoc {
	out := make([]nodeDoc, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, nodeDoc{
			ID:           n.ID,
			Name:         n.Name,
			State:        string(n.State),
			PublicDNS:    n.PublicDNS,
			PublicIP:     n.PublicIP,
			PrivateIP:    n.PrivateIP,
			Zone:         n.Zone,
			InstanceType: n.InstanceType,
		})
	}
	return out
}

// Inventory writes every node of c in the given format.
func Inventory(w io.Writer, c *cluster.Cluster, format string) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(inventoryDoc{Cluster: c.Name, Masters: toDocs(c.Masters), Workers: toDocs(c.Workers)}); err != nil {
			return fmt.Errorf("failed to encode inventory: %w", err)
		}
		return enc.Close()
	case FormatTable, "":
		table := tablewriter.NewWriter(w)
		table.Header("Role", "Name", "ID", "State", "Zone", "Address")
		for _, n := range c.Nodes() {
			if err := table.Append([]string{string(n.Role), n.Name, n.ID, string(n.State), n.Zone, n.Address()}); err != nil {
				return fmt.Errorf("failed to render inventory: %w", err)
			}
		}
		return table.Render()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// Master writes the master's address, or with FormatYAML the full
// inventory.
func Master(w io.Writer, c *cluster.Cluster, format string) error {
	if format == FormatYAML {
		return Inventory(w, c, format)
	}
	master, err := c.Master()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, master.Address())
	return err
}

// DestroyWarning describes what destroying c removes.
func DestroyWarning(c *cluster.Cluster, deleteGroups bool) string {
	var b strings.Builder
	b.WriteString(warningStyle.Render(fmt.Sprintf("Are you sure you want to destroy the cluster %s?", c.Name)))
	b.WriteString("\nALL DATA ON ALL NODES WILL BE LOST!!\n")
	b.WriteString(labelStyle.Render("The following instances will be terminated:"))
	b.WriteString("\n")
	for _, n := range c.Nodes() {
		fmt.Fprintf(&b, "> %s\n", n.Address())
	}
	if deleteGroups {
		b.WriteString(noteStyle.Render(fmt.Sprintf("Security groups %s-master and %s-workers will be deleted.", c.Name, c.Name)))
		b.WriteString("\n")
	}
	return b.String()
}
