package util

const (
	StorageLocal    = "local"
	StorageMinio    = "minio"
	StorageOSS      = "oss"
	StorageSupabase = "supabase"
)

// 文件上传相关常量
const (
	MimeVideo = "video/"
	MimeImage = "image/"
)

var (
	AllowedVideoExtensions = []string{".mp4", ".mov", ".avi", ".mkv", ".wmv", ".flv", ".webm"}
	AllowedImageExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}
)
