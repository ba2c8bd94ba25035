package controller

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ruimsramos/filehaven/http/controller/dto"
	"github.com/ruimsramos/filehaven/utils"
)

// normalizeObjectPath cleans a user supplied folder path. Nested paths like
// a/b/c are allowed, traversal is not.
func normalizeObjectPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	path = strings.Trim(path, "/\\")
	path = strings.ReplaceAll(path, "\\", "/")
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if strings.Contains(path, "..") {
		return "", fmt.Errorf("path cannot contain '..'")
	}
	return path, nil
}

// requireObjectKey reads the key query parameter shared by the key-addressed
// object routes.
func requireObjectKey(c *gin.Context) (string, bool) {
	key := c.Query("key")
	if key == "" {
		utils.JSON400(c, "key query parameter is required")
		return "", false
	}
	return key, true
}

// authorizeObjectRead allows the bucket owner directly and falls back to the
// sharing ledger for everyone else.
func (ctrl *Controller) authorizeObjectRead(c *gin.Context, objectKey string) (int64, bool) {
	ctx := c.Request.Context()

	principalID, ok := requirePrincipal(c)
	if !ok {
		return 0, false
	}
	ownerID, ok := parsePathID(c, "id")
	if !ok {
		return 0, false
	}
	if err := ctrl.Provider.Sharing.AuthorizeObjectRead(ctx, principalID, ownerID, objectKey); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Object] User %d denied read of '%s' owned by %d", principalID, objectKey, ownerID)
		respondServiceError(c, err)
		return 0, false
	}
	return ownerID, true
}

func (ctrl *Controller) ListObjects(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, ok := ctrl.authorizePathAccount(c)
	if !ok {
		return
	}

	prefix := c.Query("prefix")
	delimiter := c.Query("delimiter")

	objects, err := ctrl.Provider.Storage.ListObjects(ctx, accountID, prefix, delimiter)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Failed to list objects for account %d: %v", accountID, err)
		respondServiceError(c, err)
		return
	}

	utils.JSON200(c, objects)
}

func (ctrl *Controller) UploadObject(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, ok := ctrl.authorizePathAccount(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Object] Failed to read file from form data: %v", err)
		utils.JSON400(c, "Failed to get file: "+err.Error())
		return
	}

	customPath, err := normalizeObjectPath(c.PostForm("path"))
	if err != nil {
		utils.JSON400(c, "Invalid path: "+err.Error())
		return
	}

	objectKey := fileHeader.Filename
	if customPath != "" {
		objectKey = customPath + "/" + fileHeader.Filename
	}

	contentType := fileHeader.Header.Get("Content-Type")

	src, err := fileHeader.Open()
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Failed to open uploaded file: %v", err)
		utils.JSON500(c, "Failed to read uploaded file")
		return
	}
	defer src.Close()

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Object] Uploading '%s' (%d bytes) for account %d", objectKey, fileHeader.Size, accountID)

	resultCh := ctrl.Provider.Storage.UploadObjectAsync(ctx, accountID, objectKey, src, fileHeader.Size, contentType)
	select {
	case <-ctx.Done():
		utils.JSON500(c, "Upload cancelled")
		return
	case result := <-resultCh:
		if result.Err != nil {
			ctrl.Infra.Logger.ErrorWithContextf(ctx, result.Err, "[Object] Upload of '%s' failed: %v", objectKey, result.Err)
			respondServiceError(c, result.Err)
			return
		}
		utils.JSON201(c, result.Object)
	}
}

func (ctrl *Controller) CreateFolder(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, ok := ctrl.authorizePathAccount(c)
	if !ok {
		return
	}

	var req dto.CreateFolderRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request body: "+err.Error())
		return
	}

	folderName, err := normalizeObjectPath(req.Name)
	if err != nil || folderName == "" {
		utils.JSON400(c, "Invalid folder name")
		return
	}

	object, err := ctrl.Provider.Storage.CreateFolder(ctx, accountID, folderName)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Failed to create folder '%s' for account %d: %v", folderName, accountID, err)
		respondServiceError(c, err)
		return
	}

	utils.JSON201(c, object)
}

func (ctrl *Controller) DownloadObject(c *gin.Context) {
	ctx := c.Request.Context()

	key, ok := requireObjectKey(c)
	if !ok {
		return
	}
	ownerID, ok := ctrl.authorizeObjectRead(c, key)
	if !ok {
		return
	}

	resultCh := ctrl.Provider.Storage.DownloadObjectAsync(ctx, ownerID, key)
	select {
	case <-ctx.Done():
		utils.JSON500(c, "Download cancelled")
		return
	case result := <-resultCh:
		if result.Err != nil {
			ctrl.Infra.Logger.WarningWithContextf(ctx, "[Object] Download of '%s' from account %d failed: %v", key, ownerID, result.Err)
			respondServiceError(c, result.Err)
			return
		}
		filename := key
		if idx := strings.LastIndex(filename, "/"); idx >= 0 {
			filename = filename[idx+1:]
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(200, "application/octet-stream", result.Data)
	}
}

func (ctrl *Controller) StreamObject(c *gin.Context) {
	ctx := c.Request.Context()

	key, ok := requireObjectKey(c)
	if !ok {
		return
	}
	ownerID, ok := ctrl.authorizeObjectRead(c, key)
	if !ok {
		return
	}

	reader, info, err := ctrl.Provider.Storage.DownloadObjectStream(ctx, ownerID, key)
	if err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Object] Stream of '%s' from account %d failed: %v", key, ownerID, err)
		respondServiceError(c, err)
		return
	}
	defer reader.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(200, info.Size, contentType, reader, nil)
}

func (ctrl *Controller) ObjectExists(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, ok := ctrl.authorizePathAccount(c)
	if !ok {
		return
	}
	key, ok := requireObjectKey(c)
	if !ok {
		return
	}

	exists, err := ctrl.Provider.Storage.DoesObjectExist(ctx, accountID, key)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Existence check for '%s' failed: %v", key, err)
		respondServiceError(c, err)
		return
	}

	utils.JSON200(c, gin.H{"key": key, "exists": exists})
}

func (ctrl *Controller) DeleteObject(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, ok := ctrl.authorizePathAccount(c)
	if !ok {
		return
	}
	key, ok := requireObjectKey(c)
	if !ok {
		return
	}

	if err := ctrl.Provider.Storage.DeleteObject(ctx, accountID, key); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Failed to delete '%s' for account %d: %v", key, accountID, err)
		respondServiceError(c, err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Object] Deleted '%s' from account %d", key, accountID)
	utils.JSON200(c, gin.H{"message": "Object deleted"})
}

func (ctrl *Controller) RenameObject(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, ok := ctrl.authorizePathAccount(c)
	if !ok {
		return
	}

	var req dto.RenameObjectRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request body: "+err.Error())
		return
	}

	if err := ctrl.Provider.Storage.RenameObject(ctx, accountID, req.OldKey, req.NewKey); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Object] Failed to rename '%s' to '%s' for account %d: %v", req.OldKey, req.NewKey, accountID, err)
		respondServiceError(c, err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Object] Renamed '%s' to '%s' for account %d", req.OldKey, req.NewKey, accountID)
	utils.JSON200(c, gin.H{"message": "Object renamed"})
}

func (ctrl *Controller) PresignUpload(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, ok := ctrl.authorizePathAccount(c)
	if !ok {
		return
	}

	var req dto.PresignUploadRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request body: "+err.Error())
		return
	}

	presignedURL, err := ctrl.Provider.Storage.GeneratePresignedUploadURL(ctx, accountID, req.Key, req.ContentType)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Failed to presign upload of '%s': %v", req.Key, err)
		respondServiceError(c, err)
		return
	}

	utils.JSON200(c, gin.H{"url": presignedURL.String()})
}

func (ctrl *Controller) PresignDownload(c *gin.Context) {
	ctx := c.Request.Context()

	key, ok := requireObjectKey(c)
	if !ok {
		return
	}
	ownerID, ok := ctrl.authorizeObjectRead(c, key)
	if !ok {
		return
	}

	presignedURL, err := ctrl.Provider.Storage.GeneratePresignedDownloadURL(ctx, ownerID, key)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Failed to presign download of '%s': %v", key, err)
		respondServiceError(c, err)
		return
	}

	utils.JSON200(c, gin.H{"url": presignedURL.String()})
}

func (ctrl *Controller) StartMultipartUpload(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, ok := ctrl.authorizePathAccount(c)
	if !ok {
		return
	}

	var req dto.StartMultipartRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request body: "+err.Error())
		return
	}

	uploadID, err := ctrl.Provider.Storage.StartMultipartUpload(ctx, accountID, req.Key, req.ContentType)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Failed to start multipart upload of '%s': %v", req.Key, err)
		respondServiceError(c, err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Object] Started multipart upload '%s' for key '%s'", uploadID, req.Key)
	utils.JSON201(c, gin.H{"upload_id": uploadID, "key": req.Key})
}

func (ctrl *Controller) UploadPart(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, ok := ctrl.authorizePathAccount(c)
	if !ok {
		return
	}
	key, ok := requireObjectKey(c)
	if !ok {
		return
	}
	uploadID := c.Param("upload_id")
	partNumber, ok := parsePathID(c, "part_number")
	if !ok {
		return
	}

	part, err := ctrl.Provider.Storage.UploadPart(ctx, accountID, key, uploadID, int(partNumber), c.Request.Body, c.Request.ContentLength)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Failed to upload part %d of '%s': %v", partNumber, key, err)
		respondServiceError(c, err)
		return
	}

	utils.JSON200(c, part)
}

func (ctrl *Controller) CompleteMultipartUpload(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, ok := ctrl.authorizePathAccount(c)
	if !ok {
		return
	}
	key, ok := requireObjectKey(c)
	if !ok {
		return
	}
	uploadID := c.Param("upload_id")

	if err := ctrl.Provider.Storage.CompleteMultipartUpload(ctx, accountID, key, uploadID); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Failed to complete multipart upload '%s': %v", uploadID, err)
		respondServiceError(c, err)
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Object] Completed multipart upload '%s' for key '%s'", uploadID, key)
	utils.JSON200(c, gin.H{"message": "Upload completed", "key": key})
}

func (ctrl *Controller) AbortMultipartUpload(c *gin.Context) {
	ctx := c.Request.Context()

	accountID, ok := ctrl.authorizePathAccount(c)
	if !ok {
		return
	}
	key, ok := requireObjectKey(c)
	if !ok {
		return
	}
	uploadID := c.Param("upload_id")

	if err := ctrl.Provider.Storage.AbortMultipartUpload(ctx, accountID, key, uploadID); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Object] Failed to abort multipart upload '%s': %v", uploadID, err)
		respondServiceError(c, err)
		return
	}

	utils.JSON200(c, gin.H{"message": "Upload aborted"})
}
