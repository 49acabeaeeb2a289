package chronidx_test

import (
	"fmt"
	"log"
	"os"

	"github.com/hupe1980/chronidx"
)

func Example() {
	dir, err := os.MkdirTemp("", "chronidx-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	c, err := chronidx.Open(dir, chronidx.WithBlockBits(2))
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	const cycle = 19723 // 2024-01-01

	for _, pos := range []uint64{4096, 8192, 12288, 16384, 20480} {
		f, index, err := c.Append(cycle, pos, false)
		if err != nil {
			log.Fatal(err)
		}
		c.Release(f)
		fmt.Printf("%d -> index %d\n", pos, index)
	}

	v, err := c.Lookup(cycle, 4)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("index 4 holds", v)
	fmt.Println("last block", c.LastIndexFile(cycle))
	fmt.Println("first cycle", c.FirstIndex())

	// Output:
	// 4096 -> index 0
	// 8192 -> index 1
	// 12288 -> index 2
	// 16384 -> index 3
	// 20480 -> index 4
	// index 4 holds 20480
	// last block 1
	// first cycle 19723
}
