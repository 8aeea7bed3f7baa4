package tfjson

import "fmt"

// Ref wraps a raw expression in interpolation syntax.
func Ref(expr string) string {
	return "${" + expr + "}"
}

// ResourceAttr references an attribute of a declared resource.
func ResourceAttr(rtype, name, attr string) string {
	return Ref(fmt.Sprintf("%s.%s.%s", rtype, name, attr))
}

// DataAttr references an attribute of a declared data source.
func DataAttr(dtype, name, attr string) string {
	return Ref(fmt.Sprintf("data.%s.%s.%s", dtype, name, attr))
}

// RemoteStateOutput references an output of a terraform_remote_state data
// source, the engine-native way to consume another stack's output lazily.
func RemoteStateOutput(name, output string) string {
	return Ref(fmt.Sprintf("data.terraform_remote_state.%s.outputs.%s", name, output))
}
