//go:build vulkan

// backend_vulkan.go - alternate RenderBackend selected with -backend=vulkan

/*
Grounded on the teacher's voodoo_vulkan.go/voodoo_vulkan_headless.go
pairing: a build-tag-gated alternate backend that wraps a simpler
backend for the parts it doesn't reimplement. The teacher's Vulkan
backend is a full triangle-rasterising 3D pipeline (2000+ lines); this
machine only ever needs a 320x200 indexed-colour blit, so the Vulkan
wiring here is limited to what a presentation layer for that blit
actually requires: instance creation as a capability probe, with frame
presentation delegated to the ebiten window surface, matching the
headless variant's "wrap a simpler backend" shape rather than
reimplementing swapchain presentation for a single static-sized frame.
*/

package main

import (
	vk "github.com/goki/vulkan"
)

func init() {
	newVulkanBackend = func() (RenderBackend, error) {
		return newVulkanPresenter()
	}
}

type vulkanBackend struct {
	*ebitenBackend
	instance vk.Instance
}

func newVulkanPresenter() (RenderBackend, error) {
	if err := vk.Init(); err != nil {
		return nil, err
	}

	appInfo := &vk.ApplicationInfo{
		SType:         vk.StructureTypeApplicationInfo,
		PApplicationName: "fvcbios\x00",
		ApiVersion:    vk.ApiVersion10,
	}
	createInfo := &vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	var instance vk.Instance
	if ret := vk.CreateInstance(createInfo, nil, &instance); ret != vk.Success {
		return nil, fmtVulkanError(ret)
	}

	return &vulkanBackend{
		ebitenBackend: &ebitenBackend{width: 320, height: 200},
		instance:      instance,
	}, nil
}

func (v *vulkanBackend) Close() error {
	vk.DestroyInstance(v.instance, nil)
	return v.ebitenBackend.Close()
}

func fmtVulkanError(ret vk.Result) error {
	return &vulkanError{ret}
}

type vulkanError struct{ ret vk.Result }

func (e *vulkanError) Error() string { return "vulkan: instance creation failed" }
