// Package batch extracts outlines from every PDF in a directory and writes
// one JSON file per input.
//
// Files are processed concurrently, one document per worker, with no state
// shared between workers. A file that cannot be processed is recorded in
// the [Report] as a [*FileError] and never stops the rest of the run.
//
//	report, err := batch.New(batch.Config{
//	    InputDir:  "/app/input",
//	    OutputDir: "/app/output",
//	}).Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d ok, %d failed\n", report.Succeeded(), report.Failed())
package batch
