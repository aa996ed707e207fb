package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// openSource returns a reader for source. Sources that start with http:// or https:// are downloaded,
// any other value is treated as a file path
func openSource(ctx context.Context, client *http.Client, source string) (io.ReadCloser, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		file, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("%w: error opening file %s: %s", ErrUnreachableSource, source, err)
		}
		return file, nil
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: error building request for %s: %s", ErrUnreachableSource, source, err)
	}

	response, err := client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: error fetching %s: %s", ErrUnreachableSource, source, err)
	}

	if response.StatusCode != http.StatusOK {
		_ = response.Body.Close()
		return nil, fmt.Errorf("%w: %s answered with status %d", ErrUnreachableSource, source, response.StatusCode)
	}

	return response.Body, nil
}
