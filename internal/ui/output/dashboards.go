package output

import (
	"fmt"
	"io"
)

// Dashboard ports on the master.
const (
	AmbariPort  = 8080
	GangliaPort = 5080
)

// Dashboard is a web interface served by the cluster.
type Dashboard struct {
	Name string
	URL  string
}

// Dashboards lists the web interfaces of a cluster whose master is
// reachable at host.
func Dashboards(host string, ganglia bool) []Dashboard {
	out := []Dashboard{{Name: "Ambari", URL: fmt.Sprintf("http://%s:%d", host, AmbariPort)}}
	if ganglia {
		out = append(out, Dashboard{Name: "Ganglia", URL: fmt.Sprintf("http://%s:%d/ganglia", host, GangliaPort)})
	}
	return out
}

// PrintDashboards writes the launch summary for a ready cluster.
func PrintDashboards(w io.Writer, clusterName string, dashboards []Dashboard) error {
	if _, err := fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Cluster %s is ready", clusterName))); err != nil {
		return err
	}
	for _, d := range dashboards {
		if _, err := fmt.Fprintf(w, "%s %s\n", labelStyle.Render(d.Name+":"), urlStyle.Render(d.URL)); err != nil {
			return err
		}
	}
	return nil
}
