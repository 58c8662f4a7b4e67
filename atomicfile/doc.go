/*
Package atomicfile writes files so that readers see either the old
content or the complete new content, never a partial write.

Data goes to a temporary file in the destination directory. Close()
syncs it, renames it over the destination and syncs the directory.
Any error along the way removes the temporary file and leaves the
destination untouched.

	func save(path string, d []byte) error {
		f, err := atomicfile.New(path)
		if err != nil {
			return err
		}
		// no-op after a successful Close()
		defer f.RemoveIfNotClosed()

		if _, err = f.Write(d); err != nil {
			return err
		}
		return f.Close()
	}

WriteFile does the above in one call.
*/
package atomicfile
