package cluster

// ZoneShare is the number of workers to launch in one zone.
type ZoneShare struct {
	Zone  string
	Count int
}

// Plan is an ordered zone to count mapping.
type Plan []ZoneShare

// Total sums all shares.
func (p Plan) Total() int {
	n := 0
	for _, s := range p {
		n += s.Count
	}
	return n
}

// Partition spreads total instances across zones. Every zone gets
// total/len(zones); the first total%len(zones) zones get one more.
func Partition(total int, zones []string) (Plan, error) {
	if len(zones) == 0 {
		return nil, &ConfigurationError{Field: "zone", Reason: "no zones to launch in"}
	}
	if total < 0 {
		return nil, &ConfigurationError{Field: "slaves", Reason: "worker count cannot be negative"}
	}

	base, extra := total/len(zones), total%len(zones)
	plan := make(Plan, len(zones))
	for i, z := range zones {
		plan[i] = ZoneShare{Zone: z, Count: base}
		if i < extra {
			plan[i].Count++
		}
	}
	return plan, nil
}
