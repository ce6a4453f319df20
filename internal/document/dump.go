package document

import "github.com/davecgh/go-spew/spew"

var dumper = spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}

// Dump renders a block for debug logs.
func Dump(r Reader, id int) string {
	b, err := r.Block(id)
	if err != nil {
		return err.Error()
	}
	return dumper.Sdump(b)
}
