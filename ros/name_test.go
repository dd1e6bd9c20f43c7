package ros

import (
	"testing"
)

func TestNameValidation(t *testing.T) {
	// Positive testing
	positives := [...]string{
		"",
		"/",
		"~",
		"foo",
		"foo/",
		"foo/bar",
		"foo/bar/",
		"foo_0/bar1_/",
		"/foo",
		"/foo/",
		"/foo/bar",
		"/foo/bar/",
		"~foo",
		"~foo/",
		"~foo/bar",
		"~foo/bar/",
	}
	for _, p := range positives {
		if !isValidName(p) {
			t.Error(p)
		}
	}

	// Negative testing
	negatives := [...]string{
		"foo//bar",
		"^foo//bar",
		"//foo",
		"0foo",
		"_0foo",
		"foo/0bar",
		"foo/_bar",
		"foo/~bar",
		"foo bar",
	}
	for _, n := range negatives {
		if isValidName(n) {
			t.Error(n)
		}
	}
}

func TestQualifyNodeName(t *testing.T) {
	var tests = []struct {
		name      string
		namespace string
		base      string
	}{
		{"my_robot_base_node", "/", "my_robot_base_node"},
		{"/my_robot_base_node", "/", "my_robot_base_node"},
		{"mirte/base", "/mirte", "base"},
		{"/a/b/node", "/a/b", "node"},
	}
	for _, test := range tests {
		ns, base, err := qualifyNodeName(test.name)
		if err != nil {
			t.Errorf("%s: %v", test.name, err)
			continue
		}
		if ns != test.namespace || base != test.base {
			t.Errorf("%s: expected (%s, %s), got (%s, %s)", test.name, test.namespace, test.base, ns, base)
		}
	}

	for _, name := range []string{"", "~node", "0node", "foo bar"} {
		if _, _, err := qualifyNodeName(name); err == nil {
			t.Errorf("%q: should fail", name)
		}
	}
}

func TestCanonicalizeName(t *testing.T) {
	if canonicalizeName("/") != "/" {
		t.Fail()
	}

	if canonicalizeName("/foo//bar/") != "/foo/bar" {
		t.Fail()
	}

	if canonicalizeName("foo//bar///baz/") != "foo/bar/baz" {
		t.Fail()
	}

	if canonicalizeName("~foo//bar///baz/") != "~foo/bar/baz" {
		t.Fail()
	}
}

func TestSpecialNamespace(t *testing.T) {
	if !isGlobalName("/foo") {
		t.Fail()
	}
	if isGlobalName("~foo") {
		t.Fail()
	}
	if isGlobalName("foo") {
		t.Fail()
	}

	if isPrivateName("/foo") {
		t.Fail()
	}
	if !isPrivateName("~foo") {
		t.Fail()
	}
	if isPrivateName("foo") {
		t.Fail()
	}
}

func TestResolution1(t *testing.T) {
	remapping := NameMap{}
	resolver := newNameResolver("/", "node1", remapping)
	var result string

	result = resolver.resolve("bar")
	if result != "/bar" {
		t.Error(result)
	}

	result = resolver.resolve("/bar")
	if result != "/bar" {
		t.Error(result)
	}

	result = resolver.resolve("~bar")
	if result != "/node1/bar" {
		t.Error(result)
	}

	result = resolver.resolve("")
	if result != "/" {
		t.Error(result)
	}
}

func TestResolution2(t *testing.T) {
	remapping := NameMap{}
	resolver := newNameResolver("/go", "node2", remapping)
	var result string

	result = resolver.resolve("bar")
	if result != "/go/bar" {
		t.Error(result)
	}

	result = resolver.resolve("/bar")
	if result != "/bar" {
		t.Error(result)
	}

	result = resolver.resolve("~bar")
	if result != "/go/node2/bar" {
		t.Error(result)
	}
}

func TestResolution3(t *testing.T) {
	remapping := NameMap{}
	resolver := newNameResolver("/go", "node3", remapping)
	var result string

	result = resolver.resolve("foo/bar")
	if result != "/go/foo/bar" {
		t.Error(result)
	}

	result = resolver.resolve("/foo/bar")
	if result != "/foo/bar" {
		t.Error(result)
	}

	result = resolver.resolve("~foo/bar")
	if result != "/go/node3/foo/bar" {
		t.Error(result)
	}
}

func TestNameMap1(t *testing.T) {
	remapping := NameMap{
		"foo": "bar",
	}

	resolver := newNameResolver("/", "mynode", remapping)
	var result string

	result = resolver.remap("foo")
	if result != "/bar" {
		t.Error(result)
	}

	result = resolver.remap("/foo")
	if result != "/bar" {
		t.Error(result)
	}
}

func TestNameMap2(t *testing.T) {
	remapping := NameMap{
		"foo": "bar",
	}

	resolver := newNameResolver("/baz", "mynode", remapping)
	var result string

	result = resolver.remap("foo")
	if result != "/baz/bar" {
		t.Error(result)
		t.Error(resolver.mapping)
	}

	result = resolver.remap("/baz/foo")
	if result != "/baz/bar" {
		t.Error(result)
	}
}

func TestNameMap3(t *testing.T) {
	remapping := NameMap{
		"/foo": "bar",
	}

	resolver := newNameResolver("/", "mynode", remapping)
	var result string

	result = resolver.remap("foo")
	if result != "/bar" {
		t.Error(result)
	}

	result = resolver.remap("/foo")
	if result != "/bar" {
		t.Error(result)
	}
}

func TestNameMap4(t *testing.T) {
	remapping := NameMap{
		"/foo": "bar",
	}

	resolver := newNameResolver("/baz", "mynode", remapping)
	var result string

	result = resolver.remap("/foo")
	if result != "/baz/bar" {
		t.Error(resolver.mapping)
		t.Error(result)
	}
}

func TestNameMap5(t *testing.T) {
	remapping := NameMap{
		"/foo": "/a/b/c/bar",
	}

	resolver := newNameResolver("/baz", "mynode", remapping)
	var result string

	result = resolver.remap("/foo")
	if result != "/a/b/c/bar" {
		t.Error(result)
	}
}

func TestGetNamespace(t *testing.T) {
	var ns string
	ns = getNamespace("")
	if ns != "/" {
		t.Error(ns)
	}

	ns = getNamespace("/")
	if ns != "/" {
		t.Error(ns)
	}

	ns = getNamespace("/foo")
	if ns != "/" {
		t.Error(ns)
	}

	ns = getNamespace("/foo/")
	if ns != "/" {
		t.Error(ns)
	}

	ns = getNamespace("/foo/bar")
	if ns != "/foo/" {
		t.Error(ns)
	}

	ns = getNamespace("/foo/bar/baz")
	if ns != "/foo/bar/" {
		t.Error(ns)
	}
}

func TestPrivateRemap(t *testing.T) {
	remapping := NameMap{
		"~cmd_vel": "/mirte/cmd_vel",
		"odom":     "~odom",
	}

	resolver := newNameResolver("/robot", "base", remapping)

	if result := resolver.remap("~cmd_vel"); result != "/mirte/cmd_vel" {
		t.Error(result)
	}
	if result := resolver.remap("odom"); result != "/robot/base/odom" {
		t.Error(result)
	}
	if result := resolver.remap("joint_states"); result != "/robot/joint_states" {
		t.Error(result)
	}
	if result := resolver.qualifiedNodeName(); result != "/robot/base" {
		t.Error(result)
	}
}
