package slim

import (
	"sync"

	"github.com/oy3o/serial"
)

// Name is the catalog name of the Slim format.
const Name = "slim"

var format = sync.OnceValues(func() (*serial.Format[*Reader, *Writer], error) {
	return serial.NewFormat(Name, ReadOps(), WriteOps())
})

// Format returns the Slim format. It is built on first use and shared afterwards.
func Format() (*serial.Format[*Reader, *Writer], error) { return format() }

func init() {
	err := serial.RegisterFormat(Name, func() (serial.Inventory, error) {
		f, err := Format()
		if err != nil {
			return nil, err
		}
		return f, nil
	})
	if err != nil {
		panic(err)
	}
}
