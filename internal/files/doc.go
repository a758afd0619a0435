// Package files discovers and loads raw instrument exports from disk.
//
// Parsing packages (plate, transfer) work on in-memory Input values; this
// package is the only place in the input path that touches the file system.
//
// Example usage:
//
//	discovery := files.NewDiscovery("/data/run42")
//	plates, err := discovery.LoadDir("bmg", files.PlateExtensions...)
//	if err != nil {
//	    return err
//	}
package files
