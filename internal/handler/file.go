package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cryptic-server/internal/errs"
	"cryptic-server/internal/model"
	"cryptic-server/internal/store"
)

// FileHandler implements the per-device file tree. Every endpoint walks the
// same guard chain first: device exists, caller owns it, device is powered
// on.
type FileHandler struct {
	Store *store.Store
}

func (h *FileHandler) guardedDevice(user *model.User, deviceUUID string) (*model.Device, error) {
	device, err := h.Store.GetDevice(deviceUUID)
	if err != nil {
		return nil, err
	}
	if device == nil {
		return nil, errs.DeviceNotFound
	}
	if device.Owner != user.UUID {
		return nil, errs.PermissionDenied
	}
	if !device.PoweredOn {
		return nil, errs.DevicePoweredOff
	}
	return device, nil
}

func (h *FileHandler) Info(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		DeviceUUID string `json:"device_uuid"`
		FileUUID   string `json:"file_uuid"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	if _, err := h.guardedDevice(user, req.DeviceUUID); err != nil {
		return nil, err
	}
	file, err := h.Store.GetFile(req.DeviceUUID, req.FileUUID)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, errs.FileNotFound
	}
	return fileResponse(file), nil
}

func (h *FileHandler) All(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		DeviceUUID    string  `json:"device_uuid"`
		ParentDirUUID *string `json:"parent_dir_uuid"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	if _, err := h.guardedDevice(user, req.DeviceUUID); err != nil {
		return nil, err
	}
	files, err := h.Store.ListFiles(req.DeviceUUID, req.ParentDirUUID)
	if err != nil {
		return nil, err
	}
	return gin.H{"files": files}, nil
}

func (h *FileHandler) Create(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		DeviceUUID    string  `json:"device_uuid"`
		Filename      string  `json:"filename"`
		Content       string  `json:"content"`
		ParentDirUUID *string `json:"parent_dir_uuid"`
		IsDirectory   bool    `json:"is_directory"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	if _, err := h.guardedDevice(user, req.DeviceUUID); err != nil {
		return nil, err
	}
	if err := h.checkParentDir(req.DeviceUUID, req.ParentDirUUID); err != nil {
		return nil, err
	}
	if req.IsDirectory && req.Content != "" {
		return nil, errs.DirectoryCanNotHaveTextContent
	}
	exists, err := h.Store.FileExistsInDir(req.DeviceUUID, req.ParentDirUUID, req.Filename)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errs.FileAlreadyExists
	}

	file := model.File{
		UUID:          uuid.NewString(),
		Device:        req.DeviceUUID,
		Filename:      req.Filename,
		Content:       req.Content,
		IsDirectory:   req.IsDirectory,
		ParentDirUUID: req.ParentDirUUID,
	}
	if err := h.Store.CreateFile(file); err != nil {
		return nil, err
	}
	return fileResponse(&file), nil
}

func (h *FileHandler) Update(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		DeviceUUID string `json:"device_uuid"`
		FileUUID   string `json:"file_uuid"`
		Content    string `json:"content"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	if _, err := h.guardedDevice(user, req.DeviceUUID); err != nil {
		return nil, err
	}
	file, err := h.Store.GetFile(req.DeviceUUID, req.FileUUID)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, errs.FileNotFound
	}
	if file.IsDirectory {
		return nil, errs.DirectoriesCanNotBeUpdated
	}

	file.Content = req.Content
	if err := h.Store.UpdateFileContent(file.UUID, req.Content); err != nil {
		return nil, err
	}
	return fileResponse(file), nil
}

func (h *FileHandler) Delete(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		DeviceUUID string `json:"device_uuid"`
		FileUUID   string `json:"file_uuid"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	if _, err := h.guardedDevice(user, req.DeviceUUID); err != nil {
		return nil, err
	}
	file, err := h.Store.GetFile(req.DeviceUUID, req.FileUUID)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, errs.FileNotFound
	}
	if err := h.Store.DeleteFile(req.DeviceUUID, req.FileUUID); err != nil {
		return nil, err
	}
	return gin.H{"ok": true}, nil
}

func (h *FileHandler) Move(user *model.User, data []byte) (gin.H, error) {
	var req struct {
		DeviceUUID       string  `json:"device_uuid"`
		FileUUID         string  `json:"file_uuid"`
		NewParentDirUUID *string `json:"new_parent_dir_uuid"`
		NewFilename      string  `json:"new_filename"`
	}
	if err := bind(data, &req); err != nil {
		return nil, err
	}
	if _, err := h.guardedDevice(user, req.DeviceUUID); err != nil {
		return nil, err
	}
	file, err := h.Store.GetFile(req.DeviceUUID, req.FileUUID)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, errs.FileNotFound
	}
	if err := h.checkParentDir(req.DeviceUUID, req.NewParentDirUUID); err != nil {
		return nil, err
	}
	if file.IsDirectory && req.NewParentDirUUID != nil {
		inside, err := h.Store.IsAncestorDir(req.DeviceUUID, file.UUID, *req.NewParentDirUUID)
		if err != nil {
			return nil, err
		}
		if inside {
			return nil, errs.CanNotMoveDirIntoItself
		}
	}
	exists, err := h.Store.FileExistsInDir(req.DeviceUUID, req.NewParentDirUUID, req.NewFilename)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errs.FileAlreadyExists
	}

	if err := h.Store.MoveFile(file.UUID, req.NewParentDirUUID, req.NewFilename); err != nil {
		return nil, err
	}
	file.ParentDirUUID = req.NewParentDirUUID
	file.Filename = req.NewFilename
	return fileResponse(file), nil
}

// checkParentDir accepts nil (device root) or an existing directory.
func (h *FileHandler) checkParentDir(deviceUUID string, parentDirUUID *string) error {
	if parentDirUUID == nil {
		return nil
	}
	parent, err := h.Store.GetFile(deviceUUID, *parentDirUUID)
	if err != nil {
		return err
	}
	if parent == nil || !parent.IsDirectory {
		return errs.ParentDirectoryNotFound
	}
	return nil
}

func fileResponse(f *model.File) gin.H {
	return gin.H{
		"uuid":            f.UUID,
		"device":          f.Device,
		"filename":        f.Filename,
		"content":         f.Content,
		"is_directory":    f.IsDirectory,
		"parent_dir_uuid": f.ParentDirUUID,
	}
}
