package ros

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

const (
	Sep       = "/"
	GlobalNS  = "/"
	PrivateNS = "~"
	Remap     = ":="
)

type NameMap map[string]string

var validNamePattern = regexp.MustCompile(`^[~/]?([a-zA-Z]\w*/)*[a-zA-Z]\w*/?$`)

// getNamespace returns the parent namespace of name with a trailing
// separator.
func getNamespace(name string) string {
	if len(name) == 0 {
		return GlobalNS
	} else if name[len(name)-1] == '/' {
		name = name[:len(name)-1]
	}
	result := name[:strings.LastIndex(name, Sep)+1]
	if len(result) == 0 {
		return Sep
	}
	return result
}

// qualifyNodeName splits a node name into its namespace and base name.
func qualifyNodeName(nodeName string) (string, string, error) {
	if nodeName == "" {
		return "", "", errors.New("empty node name")
	}
	if isPrivateName(nodeName) {
		return "", "", errors.New("node name should not contain '~'")
	}
	if !isValidName(nodeName) {
		return "", "", errors.Errorf("invalid node name %q", nodeName)
	}
	canonName := canonicalizeName(GlobalNS + nodeName)
	namespace := getNamespace(canonName)
	base := canonName[len(namespace):]
	if namespace != GlobalNS {
		namespace = namespace[:len(namespace)-1]
	}
	return namespace, base, nil
}

func isValidName(name string) bool {
	if len(name) == 0 {
		return true
	}
	if name == "/" || name == "~" {
		return true
	}
	return validNamePattern.MatchString(name)
}

func isGlobalName(name string) bool {
	return strings.HasPrefix(name, GlobalNS)
}

func isPrivateName(name string) bool {
	return strings.HasPrefix(name, PrivateNS)
}

// canonicalizeName removes repeated and trailing separators.
func canonicalizeName(name string) string {
	if name == "" || name == GlobalNS {
		return name
	}
	components := []string{}
	for _, word := range strings.Split(name, Sep) {
		if len(word) > 0 {
			components = append(components, word)
		}
	}
	if isGlobalName(name) {
		return GlobalNS + strings.Join(components, Sep)
	}
	return strings.Join(components, Sep)
}

// NameResolver turns relative, private and global names into graph
// resource names, applying command-line remappings.
type NameResolver struct {
	namespace       string
	nodeName        string
	mapping         NameMap
	resolvedMapping NameMap
}

func newNameResolver(namespace string, nodeName string, remapping NameMap) *NameResolver {
	n := &NameResolver{
		namespace:       canonicalizeName(GlobalNS + namespace),
		nodeName:        nodeName,
		mapping:         remapping,
		resolvedMapping: make(NameMap),
	}
	for k, v := range remapping {
		n.resolvedMapping[n.resolve(k)] = n.resolve(v)
	}
	return n
}

// qualifiedNodeName is the node's global name, e.g. /robot/my_node.
func (n *NameResolver) qualifiedNodeName() string {
	return canonicalizeName(n.namespace + Sep + n.nodeName)
}

// resolve expands name without applying remappings.
func (n *NameResolver) resolve(name string) string {
	if len(name) == 0 {
		return n.namespace
	}
	canonName := canonicalizeName(name)
	switch {
	case isGlobalName(canonName):
		return canonName
	case isPrivateName(canonName):
		return canonicalizeName(n.qualifiedNodeName() + Sep + canonName[1:])
	default:
		return canonicalizeName(n.namespace + Sep + canonName)
	}
}

// remap expands name and applies remappings.
func (n *NameResolver) remap(name string) string {
	resolved := n.resolve(name)
	if remapped, ok := n.resolvedMapping[resolved]; ok {
		return remapped
	}
	return resolved
}
