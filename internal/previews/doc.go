// Package previews retrieves and prepares the reconstruction previews of a
// task: rendered images, the panorama and the 3-D mesh handed to a viewer.
package previews
