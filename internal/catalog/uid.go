package catalog

import (
	"crypto/md5"
	"fmt"
	"time"
)

// NewUID derives a stable identifier for a book from its creation time,
// title and author text. Formatted as four dash-separated groups of
// uppercase hex so it is easy to eyeball in exports.
func NewUID(now time.Time, title, authorText string) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%d:%s:%s", now.Unix(), title, authorText)))
	return fmt.Sprintf("%X-%X-%X-%X", sum[0:4], sum[4:8], sum[8:12], sum[12:16])
}
