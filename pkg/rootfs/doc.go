/*
Package rootfs assembles the overlay filesystem that becomes a
container's root.

# Layout

	<LayersRoot>/<uuid>/
	  upper/    # writable layer
	  work/     # overlayfs scratch directory, never touched directly
	  merged/   # the view the launcher pivot_roots into

Overlay IDs are uuids rather than an incrementing counter: two
containers starting at once must never collide on the same overlay
directory, and a uuid makes that a non-issue without a shared counter
file or lock.

Unmount and Teardown both lazy-unmount (MNT_DETACH): a merged view with
a lingering open file descriptor detaches immediately and finishes
unmounting once the last reference drops, so cleanup never blocks on a
process this package doesn't control. Unmount stops there, leaving the
upper/work/merged directories in place; Teardown additionally removes
them. A stopped container's upper layer must survive so a later start
can remount the same overlay, so the lifecycle manager's Stop calls
Unmount and only Rm calls Teardown.

# Propagated mounts

PrepareBind and ApplyBindInside implement --propagate-mount: the host
side of a pre-existing mount point is marked MS_SHARED before the
container starts, then bind-mounted onto the same path under the
overlay's merged view from inside the child, before it pivots into
merged as its own root. Writes the container makes under that path are
then visible on the host immediately, without waiting for the
container to stop.
*/
package rootfs
