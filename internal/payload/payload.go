// Package payload renders the shell commands pushed to cluster nodes.
//
// Every command is written to be safe to re-run: the remote executor
// retries a failed command from the start, so partial progress must not
// break a second pass.
package payload

import (
	"fmt"
	"strings"

	"github.com/imamik/hdpctl/internal/util/naming"
)

// Defaults for the installed software stack.
const (
	DefaultHDPVersion    = "1.3.0"
	DefaultAmbariVersion = "1.2.5.17"
	DefaultRepoURL       = "http://public-repo-1.hortonworks.com"
	DefaultJDKURL        = "http://mrplus.googlecode.com/files/jdk-6u31-linux-x64.bin"
	DefaultSwapMB        = 1024
	DefaultDatabase      = "dev"
	DefaultDatabaseUser  = "root"

	// KeyPath is where the cluster private key lands on the master,
	// relative to the bootstrap user's home.
	KeyPath = ".ssh/id_rsa"
	// HostsPath is the remote hosts file.
	HostsPath = "/etc/hosts"
)

// Options selects what the node and master payloads install.
type Options struct {
	HDPVersion       string
	AmbariVersion    string
	RepoURL          string
	JDKURL           string
	SwapMB           int
	Ganglia          bool
	Database         string
	DatabaseUser     string
	DatabasePassword string
}

// Defaults returns the stock payload options.
func Defaults() Options {
	return Options{
		HDPVersion:    DefaultHDPVersion,
		AmbariVersion: DefaultAmbariVersion,
		RepoURL:       DefaultRepoURL,
		JDKURL:        DefaultJDKURL,
		SwapMB:        DefaultSwapMB,
		Ganglia:       true,
		Database:      DefaultDatabase,
		DatabaseUser:  DefaultDatabaseUser,
	}
}

// join chains steps so the first failure aborts the command.
func join(steps ...string) string {
	return strings.Join(steps, " && ")
}

// PrepareKeyDir creates the key directory on the master.
func PrepareKeyDir() string {
	return "mkdir -p ~/.ssh"
}

// RestrictKey tightens permissions on the distributed key.
func RestrictKey() string {
	return "chmod 600 ~/" + KeyPath
}

// ElevateRoot enables root login and copies the bootstrap user's
// authorized keys to root, then restarts sshd.
func ElevateRoot(bootstrapUser string) string {
	return join(
		`(sudo grep -q '^PermitRootLogin yes' /etc/ssh/sshd_config || echo "PermitRootLogin yes" | sudo tee -a /etc/ssh/sshd_config > /dev/null)`,
		"sudo mkdir -p /root/.ssh",
		fmt.Sprintf("sudo cp /home/%s/.ssh/authorized_keys /root/.ssh/authorized_keys", bootstrapUser),
		"sudo chmod 600 /root/.ssh/authorized_keys",
		"(sudo /etc/init.d/sshd restart || sudo service sshd restart)",
	)
}

// NodeBootstrap installs the repositories, JDK and Hadoop packages on one node.
func NodeBootstrap(o Options) string {
	steps := []string{
		fmt.Sprintf("wget -nv %s/HDP/suse11/1.x/GA/hdp.repo -O /etc/zypp/repos.d/hdp.repo", o.RepoURL),
		fmt.Sprintf("wget -nv %s/ambari/suse11/1.x/updates/%s/ambari.repo -O /etc/zypp/repos.d/ambari.repo", o.RepoURL, o.AmbariVersion),
		"mkdir -p /usr/jdk1.6.0_31 /usr/java",
		fmt.Sprintf("(test -x /usr/jdk1.6.0_31/jdk1.6.0_31/bin/java || (cd /usr/jdk1.6.0_31 && wget -nv %s -O jdk.bin && chmod u+x jdk.bin && yes | ./jdk.bin > /dev/null))", o.JDKURL),
		"ln -sfn /usr/jdk1.6.0_31/jdk1.6.0_31 /usr/java/default",
		"ln -sf /usr/java/default/bin/java /usr/bin/java",
		"export JAVA_HOME=/usr/java/default",
		"export PATH=$JAVA_HOME/bin:$PATH",
		"/etc/init.d/ntp restart",
		"zypper --non-interactive install hadoop hadoop-libhdfs hadoop-native hadoop-pipes hadoop-sbin openssl",
		"zypper --non-interactive install snappy snappy-devel",
		"mkdir -p /usr/lib/hadoop/lib/native/Linux-amd64-64",
		"ln -sf /usr/lib64/libsnappy.so /usr/lib/hadoop/lib/native/Linux-amd64-64/.",
		"zypper --non-interactive install lzo lzo-devel hadoop-lzo hadoop-lzo-native",
	}
	if o.SwapMB > 0 {
		steps = append(steps, Swap(o.SwapMB))
	}
	if o.Ganglia {
		steps = append(steps,
			"zypper --non-interactive install ganglia-gmond",
			"/etc/init.d/gmond restart",
		)
	}
	return join(steps...)
}

// Swap creates and enables a swap file of sizeMB unless it exists.
func Swap(sizeMB int) string {
	return fmt.Sprintf(
		"(test -f /mnt/swap || (dd if=/dev/zero of=/mnt/swap bs=1M count=%d && chmod 600 /mnt/swap && mkswap /mnt/swap)) && (swapon -s | grep -q /mnt/swap || swapon /mnt/swap)",
		sizeMB)
}

// MasterSetup installs and opens the metadata database, plus the Ganglia
// collector and web frontend when enabled.
func MasterSetup(o Options) string {
	conf := "/var/lib/pgsql/data/postgresql.conf"
	hba := "/var/lib/pgsql/data/pg_hba.conf"
	appendOnce := func(line, file string) string {
		return fmt.Sprintf(`(grep -qxF "%s" %s || echo "%s" >> %s)`, line, file, line, file)
	}
	psql := func(sql string) string {
		return fmt.Sprintf(`(echo "%s" | psql -U postgres || true)`, sql)
	}

	steps := []string{
		"zypper --non-interactive install postgresql-server",
		"(test -f " + conf + " || /etc/init.d/postgresql initdb || true)",
		appendOnce("listen_addresses = '*'", conf),
		appendOnce("port = 5432", conf),
		appendOnce("standard_conforming_strings = off", conf),
		appendOnce("host all all 0.0.0.0/0 trust", hba),
		"/etc/init.d/postgresql restart",
		psql(fmt.Sprintf("CREATE DATABASE %s;", o.Database)),
		psql(fmt.Sprintf("CREATE USER %s WITH PASSWORD '%s';", o.DatabaseUser, o.DatabasePassword)),
		psql(fmt.Sprintf("GRANT ALL PRIVILEGES ON DATABASE %s TO %s;", o.Database, o.DatabaseUser)),
		"zypper --non-interactive install ambari-server",
		"(ambari-server status || (ambari-server setup -s && ambari-server start))",
	}
	if o.Ganglia {
		steps = append(steps,
			"zypper --non-interactive install ganglia-gmetad ganglia-web",
			"/etc/init.d/gmetad restart",
			"/etc/init.d/apache2 restart",
		)
	}
	return join(steps...)
}

// HostEntry maps one node address to its role name.
type HostEntry struct {
	Address string
	Name    string
}

// HostsFile renders the hosts file shared by every node.
func HostsFile(entries []HostEntry) string {
	var b strings.Builder
	b.WriteString("127.0.0.1 localhost.localdomain localhost\n")
	b.WriteString("::1 localhost6.localdomain6 localhost6\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "%s %s %s\n", e.Address, naming.FQDN(e.Name), e.Name)
	}
	return b.String()
}

// SetHostname sets the node hostname to its qualified role name.
func SetHostname(name string) string {
	return "hostname " + naming.FQDN(name)
}

// RestartTimeSync restarts ntpd.
func RestartTimeSync() string {
	return "/etc/init.d/ntpd restart"
}
