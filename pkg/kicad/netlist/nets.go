package netlist

import "strconv"

// Connection is one pin of one component attached to a net.
type Connection struct {
	Reference string `json:"reference" yaml:"reference"`
	Pin       int    `json:"pin" yaml:"pin"`
}

// NetGroup is one electrical net. Index is the zero-based position of the net
// in the nets section and is the basis of generated signal names.
type NetGroup struct {
	Index       int          `json:"index" yaml:"index"`
	Code        string       `json:"code,omitempty" yaml:"code,omitempty"`
	Name        string       `json:"name,omitempty" yaml:"name,omitempty"`
	Connections []Connection `json:"connections" yaml:"connections"`
}

// ParseNets extracts every "(net ...)" record of the nets block. Nodes are
// only collected inside the bounds of their net.
func ParseNets(b Block) ([]NetGroup, error) {
	text := b.Text
	var nets []NetGroup

	for pos := tagIndex(text, "net", 0); pos >= 0; {
		end, ok := FindBlockEnd(text, pos)
		if !ok {
			return nil, NewFormatError(CodeNetRecord, "", "unterminated net record")
		}

		net, err := parseNet(text[pos:end+1], len(nets))
		if err != nil {
			return nil, err
		}
		nets = append(nets, net)

		pos = tagIndex(text, "net", end+1)
	}

	return nets, nil
}

func parseNet(body string, index int) (NetGroup, error) {
	net := NetGroup{Index: index}

	firstNode := tagIndex(body, "node", 0)
	if v, _, ok := tagValue(body, "code", 0, firstNode); ok {
		net.Code = stripQuotes(v)
	}
	if v, _, ok := tagValue(body, "name", 0, firstNode); ok {
		net.Name = stripQuotes(v)
	}

	for at := firstNode; at >= 0; {
		nodeEnd, ok := FindBlockEnd(body, at)
		if !ok {
			return net, NewFormatError(CodeNetNode, net.Name, "unterminated node in net %d", index+1)
		}
		conn, err := parseNode(body[at:nodeEnd+1], net)
		if err != nil {
			return net, err
		}
		net.Connections = append(net.Connections, conn)
		at = tagIndex(body, "node", nodeEnd+1)
	}

	return net, nil
}

// parseNode reads ref and pin with the naive close-marker search; neither can
// hold nested markers.
func parseNode(node string, net NetGroup) (Connection, error) {
	ref, ok := naiveField(node, "ref")
	if !ok || ref == "" {
		return Connection{}, NewFormatError(CodeNetNode, net.Name, "node without reference in net %d", net.Index+1)
	}
	pin, ok := naiveField(node, "pin")
	if !ok {
		return Connection{}, NewFormatError(CodeNetNode, ref, "node without pin in net %d", net.Index+1)
	}
	n, err := strconv.Atoi(pin)
	if err != nil {
		return Connection{}, NewFormatError(CodeNetPinNumber, ref, "pin %q in net %d is not an integer", pin, net.Index+1)
	}
	return Connection{Reference: ref, Pin: n}, nil
}

func naiveField(text, tag string) (string, bool) {
	at := tagIndex(text, tag, 0)
	if at < 0 {
		return "", false
	}
	end, ok := FindClosingBracket(text, at)
	if !ok {
		return "", false
	}
	return stripQuotes(text[at+1+len(tag) : end]), true
}
