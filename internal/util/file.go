package util

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

const sniffLen = 512

// http.DetectContentType 不识别的视频容器，按扩展名给出类型
var videoTypesByExt = map[string]string{
	".mov": "video/quicktime",
	".wmv": "video/x-ms-wmv",
	".flv": "video/x-flv",
}

// SniffContentType 读取文件头判断 MIME 类型，返回的 reader 仍包含完整内容。
// 类型不以 prefix 开头时返回校验错误。
func SniffContentType(filename string, r io.Reader, prefix string) (io.Reader, string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, "", err
	}
	head = head[:n]
	body := io.MultiReader(bytes.NewReader(head), r)

	mimeType := http.DetectContentType(head)
	if strings.HasPrefix(mimeType, prefix) {
		return body, mimeType, nil
	}
	if mimeType == "application/octet-stream" && prefix == MimeVideo {
		if t, ok := videoTypesByExt[strings.ToLower(filepath.Ext(filename))]; ok {
			return body, t, nil
		}
	}
	return nil, mimeType, NewValidationError("file", fmt.Sprintf("content type %s is not allowed", mimeType))
}

func HasAllowedExtension(filename string, allowed []string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}
