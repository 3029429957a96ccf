package tunnel

import "os"

func defaultSocketDir() string {
	return os.TempDir()
}
